package chat_tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cctns/copilot/pkg/orchestration"
)

// Message types
type TranslationDoneMsg struct {
	Turn orchestration.Turn
	Err  error
}
type ExecutionDoneMsg struct {
	Turn orchestration.Turn
	Err  error
}
type CaptureDoneMsg struct {
	Transcript string
	Err        error
}
type ThemeSavedMsg struct{ Err error }

func runTranslationCmd(ctrl *orchestration.Controller, turnID string) tea.Cmd {
	return func() tea.Msg {
		turn, err := ctrl.RunTranslation(context.Background(), turnID)
		return TranslationDoneMsg{Turn: turn, Err: err}
	}
}

func runExecutionCmd(ctrl *orchestration.Controller, turnID string) tea.Cmd {
	return func() tea.Msg {
		turn, err := ctrl.RunExecution(context.Background(), turnID)
		return ExecutionDoneMsg{Turn: turn, Err: err}
	}
}

// startCaptureCmd blocks inside the bubbletea runtime until the capture
// finishes; Stop on the same capture ends it early.
func startCaptureCmd(capture orchestration.SpeechCapture, language string) tea.Cmd {
	return func() tea.Msg {
		text, err := capture.Start(context.Background(), language)
		return CaptureDoneMsg{Transcript: text, Err: err}
	}
}

func saveThemeCmd(save func(theme string) error, theme string) tea.Cmd {
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		return ThemeSavedMsg{Err: save(theme)}
	}
}
