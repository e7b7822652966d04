package chat_tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/render"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInputArea())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderInputArea() string {
	if m.mode == modeTitleEdit {
		return m.theme.MutedText.Render("Report title: ") + m.titleIn.View() +
			"\n" + m.theme.MutedText.Render("enter: save · esc: keep old title")
	}
	if m.mode == modeConfirm {
		return m.theme.ConfirmHint.Render("Run this query? ") +
			m.theme.MutedText.Render("[y] run · [n] cancel")
	}

	prompt := "> "
	if m.listening {
		prompt = m.spinner.View() + " "
	}
	return prompt + m.input.View()
}

func (m Model) renderStatusBar() string {
	if m.status != "" {
		return m.theme.ErrorText.Render(m.status)
	}
	return m.theme.StatusBar.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderConversation renders every message in the log, oldest first.
func (m Model) renderConversation() string {
	width := m.contentWidth()
	var parts []string
	for msg := range m.controller.Log().All() {
		parts = append(parts, m.renderMessage(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) contentWidth() int {
	if m.width < 40 {
		return 40
	}
	return m.width - 4
}

func (m Model) renderMessage(msg conversation.Message, width int) string {
	switch msg.Kind {
	case conversation.KindLoading:
		return m.theme.SystemBubble.Render(m.spinner.View() + " " + msg.Text)

	case conversation.KindConfirmation:
		return m.renderConfirmation(msg, width)

	case conversation.KindResult:
		return m.renderResult(msg, width)

	case conversation.KindCancelled:
		return m.theme.MutedText.Render(msg.Text)

	case conversation.KindFailed:
		text := msg.Text
		if msg.Reason != "" {
			text = msg.Reason
		}
		return m.theme.ErrorText.Render("✗ " + text)
	}

	// Plain text: user messages on the right, system on the left.
	if msg.Author == conversation.AuthorUser {
		bubble := m.theme.UserBubble.MaxWidth(width * 3 / 4).Render(msg.Text)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}
	return m.theme.SystemBubble.MaxWidth(width * 3 / 4).Render(msg.Text)
}

func (m Model) renderConfirmation(msg conversation.Message, width int) string {
	var b strings.Builder
	b.WriteString(m.theme.IntroText.Render(msg.IntroText))
	b.WriteString("\n")
	b.WriteString(m.theme.CardBorder.Width(min(width-2, 100)).Render(
		m.theme.QueryBlock.Render(msg.Query)))

	turn, ok := m.controller.TurnForMessage(msg.ID)
	if ok && m.mode == modeConfirm && turn.ID == m.confirmTurnID {
		b.WriteString("\n")
		b.WriteString(m.theme.ConfirmHint.Render("[y] Run query   [n] Cancel"))
	}
	return b.String()
}

func (m Model) renderResult(msg conversation.Message, width int) string {
	art := msg.Artifact
	if art == nil {
		return m.theme.SystemBubble.Render(msg.Text)
	}

	cardWidth := min(width-2, 100)
	innerWidth := cardWidth - 4

	title := m.theme.CardTitle.Render(art.Title)
	turn, hasTurn := m.controller.TurnForMessage(msg.ID)
	if hasTurn && m.mode == modeTitleEdit && turn.ID == m.editTurnID {
		title = m.titleIn.View()
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.renderTabBar(*art))
	b.WriteString("\n")
	b.WriteString(m.renderActiveTab(*art, innerWidth))

	return m.theme.CardBorder.Width(cardWidth).Render(b.String())
}

func (m Model) renderTabBar(art conversation.Artifact) string {
	tabs := []struct {
		tab   conversation.Tab
		label string
	}{
		{conversation.TabChart, "Chart"},
		{conversation.TabTable, "Table"},
		{conversation.TabSummary, "Summary"},
		{conversation.TabQuery, "Query"},
	}

	var parts []string
	for _, t := range tabs {
		if !art.HasTab(t.tab) {
			continue
		}
		if t.tab == art.ActiveTab {
			parts = append(parts, m.theme.TabActive.Render(t.label))
		} else {
			parts = append(parts, m.theme.TabInactive.Render(t.label))
		}
	}
	if len(parts) == 0 {
		return m.theme.MutedText.Render("No results to display.")
	}
	return strings.Join(parts, m.theme.MutedText.Render(" · "))
}

func (m Model) renderActiveTab(art conversation.Artifact, width int) string {
	switch art.ActiveTab {
	case conversation.TabChart:
		return render.Chart(art.ChartSeries, width)
	case conversation.TabTable:
		return render.Table(art.Columns, art.TableRows)
	case conversation.TabSummary:
		return render.Summary(art.SummaryText, width)
	case conversation.TabQuery:
		return render.Query(art.Query)
	}
	return m.theme.MutedText.Render("The query returned no displayable data.")
}

