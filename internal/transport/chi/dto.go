package chi

import (
	"time"

	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeRecordNotFound   = "record_not_found"
	codeProviderError    = "embedding_provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type filtersDTO struct {
	ContentTypes  []string `json:"content_types,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	DateFrom      *string  `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo        *string  `json:"date_to,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
	UrgencyLevels []int    `json:"urgency_levels,omitempty"`
}

type preferencesDTO struct {
	CategoryWeights map[string]float64 `json:"category_weights,omitempty"`
	PreferRecent    bool               `json:"prefer_recent,omitempty"`
	PreferUrgent    bool               `json:"prefer_urgent,omitempty"`
}

type searchRequestDTO struct {
	Query       string          `json:"query"`
	Owner       string          `json:"owner"`
	Filters     *filtersDTO     `json:"filters,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
	Preferences *preferencesDTO `json:"preferences,omitempty"`
	Diversify   bool            `json:"diversify,omitempty"`
}

type resultDTO struct {
	ID            string   `json:"id"`
	ContentType   string   `json:"content_type"`
	Category      string   `json:"category"`
	Text          string   `json:"text"`
	Summary       string   `json:"summary,omitempty"`
	CreatedAt     string   `json:"created_at"`
	Urgency       int      `json:"urgency"`
	Score         float64  `json:"score"`
	MatchType     string   `json:"match_type"`
	MatchedFields []string `json:"matched_fields"`
	Highlight     string   `json:"highlight,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type searchResponseDTO struct {
	Results       []resultDTO `json:"results"`
	Total         int         `json:"total"`
	EnhancedQuery string      `json:"enhanced_query"`
}

type resultListDTO struct {
	Results []resultDTO `json:"results"`
}

type recordDTO struct {
	ID          string              `json:"id"`
	Owner       string              `json:"owner"`
	ContentType string              `json:"content_type"`
	Category    string              `json:"category"`
	Text        string              `json:"text"`
	Summary     string              `json:"summary,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	Urgency     int                 `json:"urgency"`
	Confidence  float64             `json:"confidence"`
	Entities    map[string][]string `json:"entities,omitempty"`
	Embedding   []float32           `json:"embedding,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (d *searchRequestDTO) toRequest() (request.Request, error) {
	params, err := toFilterParams(d.Filters)
	if err != nil {
		return request.Request{}, err
	}

	prefs := request.Preferences{}
	if d.Preferences != nil {
		prefs = request.Preferences{
			CategoryWeights: d.Preferences.CategoryWeights,
			PreferRecent:    d.Preferences.PreferRecent,
			PreferUrgent:    d.Preferences.PreferUrgent,
		}
	}

	return request.New(d.Query, d.Owner, params, d.Limit, d.Offset, prefs, d.Diversify)
}

func toFilterParams(d *filtersDTO) (filter.Params, error) {
	if d == nil {
		return filter.Params{}, nil
	}
	params := filter.Params{
		ContentTypes:  d.ContentTypes,
		Categories:    d.Categories,
		MinConfidence: d.MinConfidence,
		UrgencyLevels: d.UrgencyLevels,
	}
	var err error
	if params.DateFrom, err = parseDate(d.DateFrom); err != nil {
		return filter.Params{}, err
	}
	if params.DateTo, err = parseDate(d.DateTo); err != nil {
		return filter.Params{}, err
	}
	return params, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func resultToDTO(res *result.Result) resultDTO {
	rec := res.Record()
	return resultDTO{
		ID:            rec.ID(),
		ContentType:   rec.ContentType(),
		Category:      rec.Category(),
		Text:          rec.Text(),
		Summary:       rec.Summary(),
		CreatedAt:     rec.CreatedAt().UTC().Format(time.RFC3339),
		Urgency:       rec.Urgency(),
		Score:         res.Score(),
		MatchType:     string(res.MatchType()),
		MatchedFields: res.MatchedFields(),
		Highlight:     res.Highlight(),
		Explanation:   res.Explanation(),
	}
}

func resultsToDTO(results []result.Result) []resultDTO {
	out := make([]resultDTO, 0, len(results))
	for i := range results {
		out = append(out, resultToDTO(&results[i]))
	}
	return out
}

func (d *recordDTO) toRecord() record.Record {
	return record.Reconstruct(
		d.ID, d.Owner, d.ContentType, d.Category,
		d.Text, d.Summary, d.CreatedAt, d.Urgency, d.Confidence,
		d.Entities, d.Embedding,
	)
}

func recordToDTO(rec *record.Record) recordDTO {
	return recordDTO{
		ID:          rec.ID(),
		Owner:       rec.Owner(),
		ContentType: rec.ContentType(),
		Category:    rec.Category(),
		Text:        rec.Text(),
		Summary:     rec.Summary(),
		CreatedAt:   rec.CreatedAt().UTC(),
		Urgency:     rec.Urgency(),
		Confidence:  rec.Confidence(),
		Entities:    rec.Entities(),
		Embedding:   rec.Embedding(),
	}
}
