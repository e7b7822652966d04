package chat_tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/orchestration"
)

func newTestModel(t *testing.T) (Model, *orchestration.MockTranslator, *orchestration.MockExecutor) {
	t.Helper()

	translator := &orchestration.MockTranslator{}
	executor := &orchestration.MockExecutor{}
	ctrl := orchestration.NewController(conversation.NewLog(), translator, executor)

	m := NewModel(Options{
		Controller: ctrl,
		Language:   "en",
		Theme:      "dark",
	})

	// Size the model so the viewport exists.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), translator, executor
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// translateTurn drives a submitted turn through translation the way the
// program runtime would, feeding the completion message back in.
func translateTurn(t *testing.T, m Model, turnID string) Model {
	t.Helper()
	turn, err := m.controller.RunTranslation(context.Background(), turnID)
	require.NoError(t, err)
	m, _ = update(t, m, TranslationDoneMsg{Turn: turn})
	return m
}

func TestSubmitDisabledOnBlankInput(t *testing.T) {
	m, _, _ := newTestModel(t)

	before := m.controller.Log().Len()
	m, cmd := update(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.controller.Log().Len())

	m.input.SetValue("   ")
	m, cmd = update(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.controller.Log().Len())
}

func TestSubmitCreatesTurnAndClearsInput(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.input.SetValue("Show total crimes in Guntur district")
	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)

	assert.Empty(t, m.input.Value())
	turns := m.controller.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, orchestration.StateSubmitted, turns[0].State)
	// greeting + user + loading
	assert.Equal(t, 3, m.controller.Log().Len())
}

func TestConfirmationFlow(t *testing.T) {
	m, _, executor := newTestModel(t)

	m.input.SetValue("Show FIRs in Guntur district")
	m, _ = update(t, m, keyMsg("enter"))
	turnID := m.controller.Turns()[0].ID

	m = translateTurn(t, m, turnID)
	assert.Equal(t, modeConfirm, m.mode)
	assert.Equal(t, turnID, m.confirmTurnID)

	// Typing should not reach the text input in confirm mode.
	m, _ = update(t, m, keyMsg("x"))
	assert.Empty(t, m.input.Value())

	m, cmd := update(t, m, keyMsg("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, modeInput, m.mode)
	assert.Empty(t, m.confirmTurnID)

	turn, _ := m.controller.Turn(turnID)
	assert.Equal(t, orchestration.StateExecuting, turn.State)

	turn, err := m.controller.RunExecution(context.Background(), turnID)
	require.NoError(t, err)
	m, _ = update(t, m, ExecutionDoneMsg{Turn: turn})
	assert.Equal(t, turnID, m.focusTurnID)
	assert.Equal(t, 1, executor.CallCount())
}

func TestCancelSkipsExecution(t *testing.T) {
	m, _, executor := newTestModel(t)

	m.input.SetValue("Show FIRs in Guntur district")
	m, _ = update(t, m, keyMsg("enter"))
	turnID := m.controller.Turns()[0].ID
	m = translateTurn(t, m, turnID)

	m, cmd := update(t, m, keyMsg("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, modeInput, m.mode)

	turn, _ := m.controller.Turn(turnID)
	assert.Equal(t, orchestration.StateCancelled, turn.State)
	assert.Equal(t, 0, executor.CallCount())
}

func TestConfirmIsSingleUse(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.input.SetValue("Show FIRs in Guntur district")
	m, _ = update(t, m, keyMsg("enter"))
	turnID := m.controller.Turns()[0].ID
	m = translateTurn(t, m, turnID)

	m, _ = update(t, m, keyMsg("y"))

	// The turn left AwaitingConfirmation, so a second confirm fails.
	_, err := m.controller.Confirm(turnID)
	assert.ErrorIs(t, err, conversation.ErrInvalidTransition)
}

func completedModel(t *testing.T) (Model, string) {
	t.Helper()
	m, _, _ := newTestModel(t)

	m.input.SetValue("Show FIRs in Guntur district")
	m, _ = update(t, m, keyMsg("enter"))
	turnID := m.controller.Turns()[0].ID
	m = translateTurn(t, m, turnID)
	m, _ = update(t, m, keyMsg("y"))

	turn, err := m.controller.RunExecution(context.Background(), turnID)
	require.NoError(t, err)
	m, _ = update(t, m, ExecutionDoneMsg{Turn: turn})
	return m, turnID
}

func TestCycleResultTab(t *testing.T) {
	m, turnID := completedModel(t)

	art, ok := m.focusedArtifact()
	require.True(t, ok)
	assert.Equal(t, conversation.TabChart, art.ActiveTab)

	m, _ = update(t, m, keyMsg("ctrl+t"))
	art, _ = m.focusedArtifact()
	assert.Equal(t, conversation.TabTable, art.ActiveTab)

	m, _ = update(t, m, keyMsg("ctrl+t"))
	art, _ = m.focusedArtifact()
	assert.Equal(t, conversation.TabSummary, art.ActiveTab)

	m, _ = update(t, m, keyMsg("ctrl+t"))
	art, _ = m.focusedArtifact()
	assert.Equal(t, conversation.TabQuery, art.ActiveTab)

	// Wraps back to the first available tab.
	m, _ = update(t, m, keyMsg("ctrl+t"))
	art, _ = m.focusedArtifact()
	assert.Equal(t, conversation.TabChart, art.ActiveTab)

	_ = turnID
}

func TestTitleEditCommit(t *testing.T) {
	m, turnID := completedModel(t)

	m, _ = update(t, m, keyMsg("ctrl+r"))
	assert.Equal(t, modeTitleEdit, m.mode)

	m.titleIn.SetValue("Guntur Crime Report")
	m, _ = update(t, m, keyMsg("enter"))
	assert.Equal(t, modeInput, m.mode)
	assert.Equal(t, "Guntur Crime Report", m.currentTitle(turnID))
}

func TestTitleEditRevertOnEscape(t *testing.T) {
	m, turnID := completedModel(t)
	original := m.currentTitle(turnID)

	m, _ = update(t, m, keyMsg("ctrl+r"))
	m.titleIn.SetValue("Discarded Title")
	m, _ = update(t, m, keyMsg("esc"))

	assert.Equal(t, modeInput, m.mode)
	assert.Equal(t, original, m.currentTitle(turnID))
}

func TestTitleEditRejectsBlank(t *testing.T) {
	m, turnID := completedModel(t)
	original := m.currentTitle(turnID)

	m, _ = update(t, m, keyMsg("ctrl+r"))
	m.titleIn.SetValue("   ")
	m, _ = update(t, m, keyMsg("enter"))

	assert.Equal(t, original, m.currentTitle(turnID))
	assert.NotEmpty(t, m.status)
}

func TestMicUnavailable(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := update(t, m, keyMsg("ctrl+o"))
	assert.Nil(t, cmd)
	assert.False(t, m.listening)
	assert.NotEmpty(t, m.status)
}

func TestMicToggle(t *testing.T) {
	capture := &orchestration.MockSpeechCapture{Transcript: "Show FIRs in Guntur district"}
	translator := &orchestration.MockTranslator{}
	ctrl := orchestration.NewController(conversation.NewLog(), translator, &orchestration.MockExecutor{})

	m := NewModel(Options{Controller: ctrl, Capture: capture, Language: "te"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	m, cmd := update(t, m, keyMsg("ctrl+o"))
	require.NotNil(t, cmd)
	assert.True(t, m.listening)
	assert.Equal(t, "Listening...", m.input.Placeholder)

	// Typing is ignored while listening.
	m, _ = update(t, m, keyMsg("a"))
	assert.Empty(t, m.input.Value())

	m, _ = update(t, m, CaptureDoneMsg{Transcript: "Show FIRs in Guntur district"})
	assert.False(t, m.listening)
	assert.Equal(t, "Show FIRs in Guntur district", m.input.Value())
}

func TestCaptureFailureShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.listening = true

	m, _ = update(t, m, CaptureDoneMsg{Err: &orchestration.CaptureError{Err: errors.New("no audio device")}})
	assert.False(t, m.listening)
	assert.Contains(t, m.status, "Speech capture failed")
}

func TestThemeToggle(t *testing.T) {
	var saved string
	m, _, _ := newTestModel(t)
	m.saveTheme = func(theme string) error {
		saved = theme
		return nil
	}

	require.Equal(t, "dark", m.theme.Name)
	m, cmd := update(t, m, keyMsg("ctrl+b"))
	assert.Equal(t, "light", m.theme.Name)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "light", saved)
}

func TestTranslationFailureReturnsToInput(t *testing.T) {
	translator := &orchestration.MockTranslator{Err: errors.New("model overloaded")}
	ctrl := orchestration.NewController(conversation.NewLog(), translator, &orchestration.MockExecutor{})
	m := NewModel(Options{Controller: ctrl, Language: "en"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	m.input.SetValue("Show FIRs")
	m, _ = update(t, m, keyMsg("enter"))
	turnID := m.controller.Turns()[0].ID

	turn, err := m.controller.RunTranslation(context.Background(), turnID)
	require.Error(t, err)
	m, _ = update(t, m, TranslationDoneMsg{Turn: turn, Err: err})

	assert.Equal(t, modeInput, m.mode)
	assert.Equal(t, orchestration.StateFailed, turn.State)
}

func TestCycleLanguage(t *testing.T) {
	m, translator, _ := newTestModel(t)

	m, _ = update(t, m, keyMsg("ctrl+l"))
	assert.Equal(t, "te", m.language)
	m, _ = update(t, m, keyMsg("ctrl+l"))
	assert.Equal(t, "hi", m.language)
	m, _ = update(t, m, keyMsg("ctrl+l"))
	assert.Equal(t, "en", m.language)

	m, _ = update(t, m, keyMsg("ctrl+l"))
	m.input.SetValue("గుంటూర్ జిల్లాలో మొత్తం నేరాలు చూపించు")
	m, _ = update(t, m, keyMsg("enter"))

	turns := m.controller.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "te", turns[0].Locale)
	assert.Len(t, translator.Calls, 0) // translation has not run yet
}
