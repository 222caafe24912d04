// Package record defines the read-only content record consumed by search.
package record

import "time"

// Urgency bounds for content records.
const (
	MinUrgency = 1
	MaxUrgency = 4
)

// Record is a single piece of vault content as stored upstream. It is
// read-only to the search core: records are created by ingestion and
// categorization pipelines outside this service.
type Record struct {
	id          string
	owner       string
	contentType string
	category    string
	text        string
	summary     string
	createdAt   time.Time
	urgency     int
	confidence  float64
	entities    map[string][]string
	embedding   []float32
}

// Reconstruct rebuilds a Record from stored fields without validation.
// Invariants are enforced at ingestion time.
func Reconstruct(
	id, owner, contentType, category, text, summary string,
	createdAt time.Time,
	urgency int,
	confidence float64,
	entities map[string][]string,
	embedding []float32,
) Record {
	return Record{
		id:          id,
		owner:       owner,
		contentType: contentType,
		category:    category,
		text:        text,
		summary:     summary,
		createdAt:   createdAt,
		urgency:     urgency,
		confidence:  confidence,
		entities:    entities,
		embedding:   embedding,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Owner returns the owning user scope.
func (r *Record) Owner() string { return r.owner }

// ContentType returns the content type label (message, image, audio, document).
func (r *Record) ContentType() string { return r.contentType }

// Category returns the category assigned by upstream content analysis.
func (r *Record) Category() string { return r.category }

// Text returns the raw record text.
func (r *Record) Text() string { return r.text }

// Summary returns the generated summary, empty when none was produced.
func (r *Record) Summary() string { return r.summary }

// CreatedAt returns the record creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// Urgency returns the ordinal urgency level (1-4).
func (r *Record) Urgency() int { return r.urgency }

// Confidence returns the upstream analysis confidence (0-1).
func (r *Record) Confidence() float64 { return r.confidence }

// Entities returns the extracted-entity map (entity kind -> values).
func (r *Record) Entities() map[string][]string { return r.entities }

// EntityCount returns the total number of extracted entity values.
func (r *Record) EntityCount() int {
	n := 0
	for _, vals := range r.entities {
		n += len(vals)
	}
	return n
}

// Embedding returns the record embedding, nil when not yet computed.
func (r *Record) Embedding() []float32 { return r.embedding }

// HasEmbedding reports whether an embedding has been computed for the record.
func (r *Record) HasEmbedding() bool { return len(r.embedding) > 0 }
