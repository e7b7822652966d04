// Package chat_tui implements the interactive copilot chat.
package chat_tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/cctns/copilot/pkg/logging"
	"github.com/cctns/copilot/pkg/orchestration"
)

const greetingText = `Welcome to the CCTNS Copilot Engine! How can I assist you today? Try asking:
  - "Show total crimes in Guntur district"
  - "గుంటూర్ జిల్లాలో మొత్తం నేరాలు చూపించు"
  - "गुंटूर जिले में कुल अपराध दिखाएं"`

// mode is the current input focus of the chat.
type mode int

const (
	modeInput mode = iota
	modeConfirm
	modeTitleEdit
)

// Model is the bubbletea model for the chat.
type Model struct {
	controller *orchestration.Controller
	capture    orchestration.SpeechCapture
	saveTheme  func(theme string) error

	keys     KeyMap
	help     help.Model
	input    textinput.Model
	titleIn  textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	theme    Theme
	logger   *logrus.Entry

	mode      mode
	language  string
	listening bool
	busy      int // in-flight translations/executions, drives the spinner

	// confirmTurnID is the turn currently offered for confirmation.
	confirmTurnID string
	// editTurnID is the turn whose report title is being edited.
	editTurnID string
	// focusTurnID is the completed turn whose result tabs respond to keys.
	focusTurnID string

	width  int
	height int
	ready  bool
	status string
}

// Options configures NewModel.
type Options struct {
	Controller *orchestration.Controller
	Capture    orchestration.SpeechCapture
	Language   string
	Theme      string
	// SaveTheme persists the theme choice when the user toggles it.
	SaveTheme func(theme string) error
}

// NewModel builds the chat model and seeds the greeting message.
func NewModel(opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Ask about FIRs, districts, crime types..."
	input.Focus()
	input.CharLimit = 500

	titleIn := textinput.New()
	titleIn.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	opts.Controller.Greet(greetingText)

	language := opts.Language
	if language == "" {
		language = "en"
	}

	return Model{
		controller: opts.Controller,
		capture:    opts.Capture,
		saveTheme:  opts.SaveTheme,
		keys:       NewKeyMap(),
		help:       help.New(),
		input:      input,
		titleIn:    titleIn,
		spinner:    sp,
		theme:      ThemeByName(opts.Theme),
		logger:     logging.New("chat-tui"),
		mode:       modeInput,
		language:   language,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// micAvailable reports whether speech capture can be offered.
func (m Model) micAvailable() bool {
	type availabler interface{ Available() bool }
	if m.capture == nil {
		return false
	}
	if a, ok := m.capture.(availabler); ok {
		return a.Available()
	}
	return true
}

// canSubmit mirrors the send control: disabled while the input is blank or
// a capture is running.
func (m Model) canSubmit() bool {
	return !m.listening && strings.TrimSpace(m.input.Value()) != ""
}
