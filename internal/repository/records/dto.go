package records

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/recall-vault/recall/internal/domain/record"
)

// recordDTO is the JSON shape stored per record.
type recordDTO struct {
	ID          string              `json:"id"`
	Owner       string              `json:"owner"`
	ContentType string              `json:"content_type"`
	Category    string              `json:"category"`
	Text        string              `json:"text"`
	Summary     string              `json:"summary,omitempty"`
	CreatedAt   int64               `json:"created_at"`
	Urgency     int                 `json:"urgency"`
	Confidence  float64             `json:"confidence"`
	Entities    map[string][]string `json:"entities,omitempty"`
	Embedding   []float32           `json:"embedding,omitempty"`
}

func toDTO(rec *record.Record) recordDTO {
	return recordDTO{
		ID:          rec.ID(),
		Owner:       rec.Owner(),
		ContentType: rec.ContentType(),
		Category:    rec.Category(),
		Text:        rec.Text(),
		Summary:     rec.Summary(),
		CreatedAt:   rec.CreatedAt().Unix(),
		Urgency:     rec.Urgency(),
		Confidence:  rec.Confidence(),
		Entities:    rec.Entities(),
		Embedding:   rec.Embedding(),
	}
}

func fromJSON(data []byte) (record.Record, error) {
	var dto recordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return record.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return record.Reconstruct(
		dto.ID, dto.Owner, dto.ContentType, dto.Category,
		dto.Text, dto.Summary,
		time.Unix(dto.CreatedAt, 0).UTC(),
		dto.Urgency, dto.Confidence, dto.Entities, dto.Embedding,
	), nil
}
