package chat_tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/orchestration"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputHeight := 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.busy > 0 || m.listening {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case TranslationDoneMsg:
		m.busy--
		if msg.Err != nil {
			m.logger.WithError(msg.Err).Warn("Translation failed")
		}
		if msg.Turn.State == orchestration.StateAwaitingConfirmation && m.confirmTurnID == "" {
			m.enterConfirmMode(msg.Turn.ID)
		}
		m.refreshViewport()
		return m, nil

	case ExecutionDoneMsg:
		m.busy--
		if msg.Err != nil {
			m.logger.WithError(msg.Err).Warn("Execution failed")
		}
		if msg.Turn.State == orchestration.StateCompleted {
			m.focusTurnID = msg.Turn.ID
		}
		m.refreshViewport()
		return m, nil

	case CaptureDoneMsg:
		m.listening = false
		m.input.Placeholder = "Ask about FIRs, districts, crime types..."
		if msg.Err != nil {
			m.status = fmt.Sprintf("Speech capture failed: %v", msg.Err)
			return m, nil
		}
		if msg.Transcript != "" {
			m.input.SetValue(msg.Transcript)
			m.input.CursorEnd()
		}
		return m, nil

	case ThemeSavedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Could not save theme: %v", msg.Err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeTitleEdit:
		return m.handleTitleEditKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Mic):
		return m.toggleMic()

	case key.Matches(msg, m.keys.CycleTab):
		m.cycleResultTab()
		return m, nil

	case key.Matches(msg, m.keys.CycleLang):
		m.cycleLanguage()
		return m, nil

	case key.Matches(msg, m.keys.RenameTitle):
		return m.startTitleEdit()

	case key.Matches(msg, m.keys.ToggleTheme):
		return m.toggleTheme()

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.listening {
		// Typing is disabled while the mic is live.
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.canSubmit() {
		// Blank input: the send action stays disabled.
		return m, nil
	}

	turn, err := m.controller.Submit(m.input.Value(), m.language)
	if err != nil {
		m.status = fmt.Sprintf("Could not submit: %v", err)
		return m, nil
	}

	m.input.Reset()
	m.status = ""
	m.busy++
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(runTranslationCmd(m.controller, turn.ID), m.spinner.Tick)
}

func (m Model) toggleMic() (tea.Model, tea.Cmd) {
	if !m.micAvailable() {
		m.status = "Speech capture is not configured."
		return m, nil
	}

	if m.listening {
		// The blocked capture command returns with the transcript so far.
		m.capture.Stop()
		return m, nil
	}

	m.listening = true
	m.input.SetValue("")
	m.input.Placeholder = "Listening..."
	return m, tea.Batch(startCaptureCmd(m.capture, m.language), m.spinner.Tick)
}

func (m *Model) enterConfirmMode(turnID string) {
	m.mode = modeConfirm
	m.confirmTurnID = turnID
	m.input.Blur()
}

func (m *Model) leaveConfirmMode() {
	m.mode = modeInput
	m.confirmTurnID = ""
	m.input.Focus()

	// If another turn reached confirmation while this one was decided,
	// offer it next.
	for _, t := range m.controller.Turns() {
		if t.State == orchestration.StateAwaitingConfirmation {
			m.enterConfirmMode(t.ID)
			return
		}
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		turnID := m.confirmTurnID
		if _, err := m.controller.Confirm(turnID); err != nil {
			m.status = fmt.Sprintf("Could not confirm: %v", err)
			m.leaveConfirmMode()
			return m, nil
		}
		m.busy++
		m.leaveConfirmMode()
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, tea.Batch(runExecutionCmd(m.controller, turnID), m.spinner.Tick)

	case key.Matches(msg, m.keys.Cancel):
		if _, err := m.controller.Cancel(m.confirmTurnID); err != nil {
			m.status = fmt.Sprintf("Could not cancel: %v", err)
		}
		m.leaveConfirmMode()
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil
	}
	return m, nil
}

func (m Model) startTitleEdit() (tea.Model, tea.Cmd) {
	if m.focusTurnID == "" {
		return m, nil
	}
	turn, ok := m.controller.Turn(m.focusTurnID)
	if !ok || turn.State != orchestration.StateCompleted {
		return m, nil
	}

	m.mode = modeTitleEdit
	m.editTurnID = turn.ID
	m.titleIn.SetValue(m.currentTitle(turn.ID))
	m.titleIn.CursorEnd()
	m.titleIn.Focus()
	m.input.Blur()
	m.refreshViewport()
	return m, textinput.Blink
}

func (m Model) handleTitleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := m.titleIn.Value()
		if err := m.controller.RenameTitle(m.editTurnID, title); err != nil {
			// Blank titles are rejected, keep the old one.
			m.status = "Report title cannot be empty."
		}
		m.endTitleEdit()
		m.refreshViewport()
		return m, nil

	case "esc":
		// Revert: the stored title was never changed.
		m.endTitleEdit()
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.titleIn, cmd = m.titleIn.Update(msg)
	return m, cmd
}

func (m *Model) endTitleEdit() {
	m.mode = modeInput
	m.editTurnID = ""
	m.titleIn.Blur()
	m.titleIn.Reset()
	m.input.Focus()
}

// cycleResultTab advances the active tab of the focused result to the next
// tab that has data.
func (m *Model) cycleResultTab() {
	if m.focusTurnID == "" {
		return
	}
	art, ok := m.focusedArtifact()
	if !ok || art.ActiveTab == conversation.TabNone {
		return
	}

	order := []conversation.Tab{
		conversation.TabChart,
		conversation.TabTable,
		conversation.TabSummary,
		conversation.TabQuery,
	}
	start := 0
	for i, t := range order {
		if t == art.ActiveTab {
			start = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		next := order[(start+i)%len(order)]
		if art.HasTab(next) {
			if err := m.controller.SelectTab(m.focusTurnID, next); err != nil {
				m.status = fmt.Sprintf("Could not switch tab: %v", err)
			}
			m.refreshViewport()
			return
		}
	}
}

func (m Model) focusedArtifact() (conversation.Artifact, bool) {
	turn, ok := m.controller.Turn(m.focusTurnID)
	if !ok {
		return conversation.Artifact{}, false
	}
	msg, err := m.controller.Log().Get(turn.SystemMessageID)
	if err != nil || msg.Artifact == nil {
		return conversation.Artifact{}, false
	}
	return *msg.Artifact, true
}

func (m Model) currentTitle(turnID string) string {
	turn, ok := m.controller.Turn(turnID)
	if !ok {
		return ""
	}
	msg, err := m.controller.Log().Get(turn.SystemMessageID)
	if err != nil || msg.Artifact == nil {
		return ""
	}
	return msg.Artifact.Title
}

// languages lists the selectable input languages in cycle order.
var languages = []struct{ code, label string }{
	{"en", "English"},
	{"te", "తెలుగు"},
	{"hi", "हिंदी"},
}

// cycleLanguage advances the input language; it applies to the next
// submission and capture, never to turns already in flight.
func (m *Model) cycleLanguage() {
	for i, l := range languages {
		if l.code == m.language {
			next := languages[(i+1)%len(languages)]
			m.language = next.code
			m.status = "Input language: " + next.label
			return
		}
	}
	m.language = languages[0].code
	m.status = "Input language: " + languages[0].label
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	if m.theme.Name == "dark" {
		m.theme = LightTheme()
	} else {
		m.theme = DarkTheme()
	}
	m.refreshViewport()
	return m, saveThemeCmd(m.saveTheme, m.theme.Name)
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
}
