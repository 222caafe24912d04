// Package match defines the closed set of retrieval match types.
package match

// Type identifies which retrieval strategy produced a result.
type Type string

// Match type constants. Hybrid is never produced by a retriever directly:
// fusion assigns it when two or more strategies return the same record.
const (
	Semantic Type = "semantic"
	Fuzzy    Type = "fuzzy"
	Exact    Type = "exact"
	Hybrid   Type = "hybrid"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Semantic || t == Fuzzy || t == Exact || t == Hybrid
}
