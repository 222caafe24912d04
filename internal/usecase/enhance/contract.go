package enhance

import "context"

// LanguageService delegates enhancement of non-trivial queries to an
// external language model. Optional: the enhancer works without one.
type LanguageService interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}
