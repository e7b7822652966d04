package orchestration

import (
	"context"

	"github.com/cctns/copilot/pkg/conversation"
)

// Translation is the translator collaborator's answer for one turn: an intro
// line shown above the query, the generated query itself, and a suggested
// report title for the eventual result artifact.
type Translation struct {
	IntroText   string `json:"introText"`
	Query       string `json:"query"`
	ReportTitle string `json:"reportTitle"`
}

// ExecResult is the executor collaborator's answer for one confirmed query.
// Every field may be empty; the result artifact's tab availability follows
// from which ones are populated.
type ExecResult struct {
	SummaryText string
	ChartSeries []conversation.SeriesPoint
	Columns     []string
	TableRows   []map[string]string
	ReportTitle string
}

// Translator converts natural language into a runnable query. Invoked once
// per turn upon submission.
type Translator interface {
	Translate(ctx context.Context, text, locale string) (*Translation, error)
}

// Executor runs a confirmed query against the backing store. Invoked once per
// turn upon confirmation.
type Executor interface {
	Execute(ctx context.Context, query string) (*ExecResult, error)
}

// SpeechCapture turns microphone input into text. The controller never calls
// it; the input affordance does, and writes the transcript into the input
// field. Start blocks until a transcript is available or capture fails.
type SpeechCapture interface {
	Start(ctx context.Context, lang string) (string, error)
	Stop()
}
