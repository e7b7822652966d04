package conversation

import (
	"errors"
	"strings"
)

// Tab identifies one pane of a result artifact.
type Tab string

const (
	TabNone    Tab = ""
	TabChart   Tab = "chart"
	TabTable   Tab = "table"
	TabSummary Tab = "summary"
	TabQuery   Tab = "query"
)

// tabPrecedence is the fixed order used to pick the default active tab.
var tabPrecedence = []Tab{TabChart, TabTable, TabSummary, TabQuery}

var (
	// ErrTabUnavailable is returned when a tab with no underlying data is
	// selected.
	ErrTabUnavailable = errors.New("tab has no data")

	// ErrEmptyTitle is returned when a rename would leave the artifact
	// without a title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// SeriesPoint is one labelled value in a chart series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Artifact is the tabbed result bundle attached to a completed turn. All data
// fields are optional; the active tab is constrained to a tab whose data is
// non-empty, and when everything is empty no tab is active and the artifact
// renders an empty state.
type Artifact struct {
	Title       string              `json:"title"`
	SummaryText string              `json:"summaryText,omitempty"`
	ChartSeries []SeriesPoint       `json:"chartSeries,omitempty"`
	Columns     []string            `json:"columns,omitempty"`
	TableRows   []map[string]string `json:"tableRows,omitempty"`
	Query       string              `json:"query,omitempty"`
	ActiveTab   Tab                 `json:"activeTab"`
}

// NewArtifact returns a copy of the artifact with the default tab selected.
func NewArtifact(a Artifact) Artifact {
	a.ActiveTab = a.DefaultTab()
	return a
}

// HasTab reports whether the tab's underlying data is non-empty.
func (a Artifact) HasTab(t Tab) bool {
	switch t {
	case TabChart:
		return len(a.ChartSeries) > 0
	case TabTable:
		return len(a.TableRows) > 0
	case TabSummary:
		return strings.TrimSpace(a.SummaryText) != ""
	case TabQuery:
		return strings.TrimSpace(a.Query) != ""
	}
	return false
}

// DefaultTab returns the first non-empty tab in precedence order, or TabNone
// when all panes are empty.
func (a Artifact) DefaultTab() Tab {
	for _, t := range tabPrecedence {
		if a.HasTab(t) {
			return t
		}
	}
	return TabNone
}

// SelectTab returns a copy of the artifact with the active tab updated.
// Selecting a tab with no data is rejected and the artifact is returned
// unchanged; selecting the already-active tab is a no-op.
func (a Artifact) SelectTab(t Tab) (Artifact, error) {
	if !a.HasTab(t) {
		return a, ErrTabUnavailable
	}
	a.ActiveTab = t
	return a, nil
}

// RenameTitle returns a copy of the artifact with the title replaced. Titles
// that trim to empty are rejected and the artifact is returned unchanged.
func (a Artifact) RenameTitle(title string) (Artifact, error) {
	if strings.TrimSpace(title) == "" {
		return a, ErrEmptyTitle
	}
	a.Title = title
	return a, nil
}
