package orchestration

import (
	"context"
	"sync"

	"github.com/cctns/copilot/pkg/conversation"
)

// MockTranslator is a Translator for tests and offline demo mode. It records
// every call and serves either a custom func or a canned result.
type MockTranslator struct {
	mu    sync.Mutex
	Calls []string

	// TranslateFunc allows custom behavior; when nil, Result/Err are used.
	TranslateFunc func(ctx context.Context, text, locale string) (*Translation, error)
	Result        *Translation
	Err           error
}

func (m *MockTranslator) Translate(ctx context.Context, text, locale string) (*Translation, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, locale)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &Translation{
		IntroText:   defaultIntroText,
		Query:       "SELECT fir_id, crime_type, incident_date FROM fir WHERE district = 'Guntur'",
		ReportTitle: "FIRs from Guntur Report",
	}, nil
}

// MockExecutor is an Executor for tests and offline demo mode.
type MockExecutor struct {
	mu      sync.Mutex
	Queries []string

	ExecuteFunc func(ctx context.Context, query string) (*ExecResult, error)
	Result      *ExecResult
	Err         error
}

func (m *MockExecutor) Execute(ctx context.Context, query string) (*ExecResult, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, query)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &ExecResult{
		SummaryText: "Total 15 FIRs found in Guntur district. Most common crime type was 'Theft'.",
		ChartSeries: []conversation.SeriesPoint{
			{Label: "Theft", Value: 8},
			{Label: "Assault", Value: 4},
			{Label: "Other", Value: 3},
		},
		Columns: []string{"fir_id", "crime_type", "incident_date"},
		TableRows: []map[string]string{
			{"fir_id": "101", "crime_type": "Theft", "incident_date": "2023-01-05"},
			{"fir_id": "102", "crime_type": "Assault", "incident_date": "2023-01-08"},
		},
	}, nil
}

// CallCount returns how many times Execute was invoked.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// MockSpeechCapture is a SpeechCapture for tests and offline demo mode.
type MockSpeechCapture struct {
	Transcript string
	Err        error
	Stopped    bool
}

func (m *MockSpeechCapture) Start(ctx context.Context, lang string) (string, error) {
	if m.Err != nil {
		return "", &CaptureError{Err: m.Err}
	}
	return m.Transcript, nil
}

func (m *MockSpeechCapture) Stop() { m.Stopped = true }
