package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/logging"
)

// Default texts for the evolving system message. The translator's intro text
// overrides defaultIntroText when present.
const (
	translatingText  = "Generating SQL query..."
	executingText    = "Confirmed. Executing SQL..."
	cancelledText    = "Operation cancelled by user."
	defaultIntroText = "Here is the generated SQL query. Please review and confirm to run:"
	defaultTitle     = "Query Results"
)

// Controller drives turns through their state machine. It owns the turn
// table and writes every transition back into the conversation log; the
// presentation layer only reads the log and calls the methods below.
//
// Turns are independent: each one's system message is mutated by its own
// identifier, so a late completion for one turn can never touch another.
type Controller struct {
	mu         sync.Mutex
	log        *conversation.Log
	translator Translator
	executor   Executor
	turns      map[string]*Turn
	order      []string
	logger     *logrus.Entry
}

// NewController creates a controller over the given log and collaborators.
func NewController(log *conversation.Log, translator Translator, executor Executor) *Controller {
	return &Controller{
		log:        log,
		translator: translator,
		executor:   executor,
		turns:      make(map[string]*Turn),
		logger:     logging.New("orchestration"),
	}
}

// Log returns the conversation log the controller writes to.
func (c *Controller) Log() *conversation.Log { return c.log }

// Greet appends the system greeting that opens a conversation.
func (c *Controller) Greet(text string) string {
	return c.log.Append(conversation.NewMessage(conversation.AuthorSystem, conversation.KindPlainText, text))
}

// Submit creates a turn for the given text: the user message and the
// system loading message are appended and the turn starts in Submitted.
// Blank text is rejected before any turn is created.
func (c *Controller) Submit(text, locale string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptySubmission
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	userID := c.log.Append(conversation.NewMessage(conversation.AuthorUser, conversation.KindPlainText, text))
	sysID := c.log.Append(conversation.NewMessage(conversation.AuthorSystem, conversation.KindLoading, translatingText))

	turn := &Turn{
		ID:              uuid.New().String(),
		UserMessageID:   userID,
		SystemMessageID: sysID,
		State:           StateSubmitted,
		Prompt:          text,
		Locale:          locale,
	}
	c.turns[turn.ID] = turn
	c.order = append(c.order, turn.ID)

	c.logger.WithFields(logrus.Fields{
		"turn":   turn.ID,
		"locale": locale,
	}).Info("Turn submitted")
	return *turn, nil
}

// RunTranslation performs the translation phase of a turn: it marks the turn
// Translating, invokes the translator, and applies the outcome. Safe to call
// from a background goroutine; all state mutation happens under the lock.
func (c *Controller) RunTranslation(ctx context.Context, turnID string) (Turn, error) {
	c.mu.Lock()
	turn, ok := c.turns[turnID]
	if !ok {
		c.mu.Unlock()
		return Turn{}, fmt.Errorf("run translation: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State != StateSubmitted {
		state := turn.State
		c.mu.Unlock()
		return Turn{}, fmt.Errorf("run translation: turn %s in state %s: %w", turnID, state, conversation.ErrInvalidTransition)
	}
	turn.State = StateTranslating
	prompt, locale := turn.Prompt, turn.Locale
	c.mu.Unlock()

	result, err := c.translator.Translate(ctx, prompt, locale)
	if err == nil && result == nil {
		err = fmt.Errorf("translator returned no result")
	}
	aerr := c.ApplyTranslation(turnID, result, err)
	snap, serr := c.snapshot(turnID)
	if serr != nil {
		return Turn{}, serr
	}
	return snap, aerr
}

// ApplyTranslation applies a translator completion to a turn. Completions
// for turns already in a terminal state are no-ops.
func (c *Controller) ApplyTranslation(turnID string, result *Translation, terr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn, ok := c.turns[turnID]
	if !ok {
		return fmt.Errorf("apply translation: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State.IsTerminal() {
		c.logger.WithFields(logrus.Fields{
			"turn":  turnID,
			"state": turn.State,
		}).Debug("Dropping late translation completion")
		return nil
	}
	if turn.State != StateTranslating {
		return fmt.Errorf("apply translation: turn %s in state %s: %w", turnID, turn.State, conversation.ErrInvalidTransition)
	}

	if terr != nil {
		return c.failLocked(turn, &TranslationError{Err: terr})
	}

	intro := strings.TrimSpace(result.IntroText)
	if intro == "" {
		intro = defaultIntroText
	}
	if err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		m.Kind = conversation.KindConfirmation
		m.Text = ""
		m.IntroText = intro
		m.Query = result.Query
	}); err != nil {
		return fmt.Errorf("apply translation: %w", err)
	}

	turn.State = StateAwaitingConfirmation
	turn.IntroText = intro
	turn.GeneratedQuery = result.Query
	turn.ReportTitle = result.ReportTitle

	c.logger.WithFields(logrus.Fields{
		"turn":  turnID,
		"query": truncate(result.Query, 120),
	}).Info("Query generated, awaiting confirmation")
	return nil
}

// Confirm moves a turn from AwaitingConfirmation to Executing. The
// confirmation affordance is single-use; calling this from any other state
// is an invalid transition.
func (c *Controller) Confirm(turnID string) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn, ok := c.turns[turnID]
	if !ok {
		return Turn{}, fmt.Errorf("confirm: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State != StateAwaitingConfirmation {
		return Turn{}, fmt.Errorf("confirm: turn %s in state %s: %w", turnID, turn.State, conversation.ErrInvalidTransition)
	}

	if err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		m.Kind = conversation.KindLoading
		m.Text = executingText
		m.IntroText = ""
	}); err != nil {
		return Turn{}, fmt.Errorf("confirm: %w", err)
	}
	turn.State = StateExecuting

	c.logger.WithField("turn", turnID).Info("Query confirmed")
	return *turn, nil
}

// Cancel terminates a turn from AwaitingConfirmation without executing.
func (c *Controller) Cancel(turnID string) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn, ok := c.turns[turnID]
	if !ok {
		return Turn{}, fmt.Errorf("cancel: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State != StateAwaitingConfirmation {
		return Turn{}, fmt.Errorf("cancel: turn %s in state %s: %w", turnID, turn.State, conversation.ErrInvalidTransition)
	}

	if err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		m.Kind = conversation.KindCancelled
		m.Text = cancelledText
		m.IntroText = ""
		m.Query = ""
	}); err != nil {
		return Turn{}, fmt.Errorf("cancel: %w", err)
	}
	turn.State = StateCancelled

	c.logger.WithField("turn", turnID).Info("Turn cancelled")
	return *turn, nil
}

// RunExecution performs the execution phase of a confirmed turn. Like
// RunTranslation it is safe to call from a background goroutine.
func (c *Controller) RunExecution(ctx context.Context, turnID string) (Turn, error) {
	c.mu.Lock()
	turn, ok := c.turns[turnID]
	if !ok {
		c.mu.Unlock()
		return Turn{}, fmt.Errorf("run execution: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State != StateExecuting {
		state := turn.State
		c.mu.Unlock()
		return Turn{}, fmt.Errorf("run execution: turn %s in state %s: %w", turnID, state, conversation.ErrInvalidTransition)
	}
	query := turn.GeneratedQuery
	c.mu.Unlock()

	result, err := c.executor.Execute(ctx, query)
	if err == nil && result == nil {
		err = fmt.Errorf("executor returned no result")
	}
	aerr := c.ApplyExecution(turnID, result, err)
	snap, serr := c.snapshot(turnID)
	if serr != nil {
		return Turn{}, serr
	}
	return snap, aerr
}

// ApplyExecution applies an executor completion to a turn. Completions for
// turns already in a terminal state are no-ops.
func (c *Controller) ApplyExecution(turnID string, result *ExecResult, xerr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn, ok := c.turns[turnID]
	if !ok {
		return fmt.Errorf("apply execution: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State.IsTerminal() {
		c.logger.WithFields(logrus.Fields{
			"turn":  turnID,
			"state": turn.State,
		}).Debug("Dropping late execution completion")
		return nil
	}
	if turn.State != StateExecuting {
		return fmt.Errorf("apply execution: turn %s in state %s: %w", turnID, turn.State, conversation.ErrInvalidTransition)
	}

	if xerr != nil {
		return c.failLocked(turn, &ExecutionError{Err: xerr})
	}

	title := strings.TrimSpace(result.ReportTitle)
	if title == "" {
		title = strings.TrimSpace(turn.ReportTitle)
	}
	if title == "" {
		title = defaultTitle
	}

	artifact := conversation.NewArtifact(conversation.Artifact{
		Title:       title,
		SummaryText: result.SummaryText,
		ChartSeries: result.ChartSeries,
		Columns:     result.Columns,
		TableRows:   result.TableRows,
		Query:       turn.GeneratedQuery,
	})

	if err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		m.Kind = conversation.KindResult
		m.Text = "SQL executed successfully."
		m.Artifact = &artifact
	}); err != nil {
		return fmt.Errorf("apply execution: %w", err)
	}
	turn.State = StateCompleted

	c.logger.WithFields(logrus.Fields{
		"turn": turnID,
		"tab":  artifact.ActiveTab,
		"rows": len(result.TableRows),
	}).Info("Turn completed")
	return nil
}

// SelectTab updates the active tab of a completed turn's result artifact.
func (c *Controller) SelectTab(turnID string, tab conversation.Tab) error {
	return c.mutateArtifact(turnID, func(a conversation.Artifact) (conversation.Artifact, error) {
		return a.SelectTab(tab)
	})
}

// RenameTitle commits a title edit on a completed turn's result artifact.
func (c *Controller) RenameTitle(turnID, title string) error {
	return c.mutateArtifact(turnID, func(a conversation.Artifact) (conversation.Artifact, error) {
		return a.RenameTitle(title)
	})
}

func (c *Controller) mutateArtifact(turnID string, fn func(conversation.Artifact) (conversation.Artifact, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn, ok := c.turns[turnID]
	if !ok {
		return fmt.Errorf("artifact: %s: %w", turnID, ErrTurnNotFound)
	}
	if turn.State != StateCompleted {
		return fmt.Errorf("artifact: turn %s in state %s: %w", turnID, turn.State, conversation.ErrInvalidTransition)
	}

	var inner error
	err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		if m.Artifact == nil {
			return
		}
		updated, ferr := fn(*m.Artifact)
		if ferr != nil {
			inner = ferr
			return
		}
		m.Artifact = &updated
	})
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	return inner
}

// Turn returns a snapshot of the turn with the given identifier.
func (c *Controller) Turn(turnID string) (Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	turn, ok := c.turns[turnID]
	if !ok {
		return Turn{}, false
	}
	return *turn, true
}

// Turns returns snapshots of all turns in submission order.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.turns[id])
	}
	return out
}

// TurnForMessage resolves the turn that owns the given system message.
func (c *Controller) TurnForMessage(messageID string) (Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.order {
		if c.turns[id].SystemMessageID == messageID {
			return *c.turns[id], true
		}
	}
	return Turn{}, false
}

// failLocked moves a turn to Failed and writes the reason into its system
// message. Callers hold the lock.
func (c *Controller) failLocked(turn *Turn, cause error) error {
	if err := c.log.Mutate(turn.SystemMessageID, func(m *conversation.Message) {
		m.Kind = conversation.KindFailed
		m.Text = ""
		m.IntroText = ""
		m.Reason = cause.Error()
	}); err != nil {
		return fmt.Errorf("fail turn %s: %w", turn.ID, err)
	}
	turn.State = StateFailed

	c.logger.WithFields(logrus.Fields{
		"turn":  turn.ID,
		"error": cause.Error(),
	}).Warn("Turn failed")
	return cause
}

func (c *Controller) snapshot(turnID string) (Turn, error) {
	turn, ok := c.Turn(turnID)
	if !ok {
		return Turn{}, fmt.Errorf("snapshot: %s: %w", turnID, ErrTurnNotFound)
	}
	return turn, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
