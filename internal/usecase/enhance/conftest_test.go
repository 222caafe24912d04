package enhance

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

// mockLanguage implements LanguageService for tests.
type mockLanguage struct {
	response string
	err      error
	calls    int
}

func (m *mockLanguage) Enhance(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.response, m.err
}

func newTestService(t *testing.T, lang LanguageService) *Service {
	t.Helper()
	svc, err := New(lang, 16, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc.WithClock(func() time.Time {
		return time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	})
}
