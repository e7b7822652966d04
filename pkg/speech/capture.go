// Package speech captures spoken input by shelling out to an external
// speech-to-text command and returning its transcript.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cctns/copilot/pkg/exec"
	"github.com/cctns/copilot/pkg/logging"
	"github.com/cctns/copilot/pkg/orchestration"
)

// ErrNotAvailable indicates the configured transcriber command was not found
// on PATH.
var ErrNotAvailable = errors.New("speech: transcriber command not available")

// ErrAlreadyCapturing indicates Start was called while a capture was in
// progress.
var ErrAlreadyCapturing = errors.New("speech: capture already in progress")

// CommandCapture implements orchestration.SpeechCapture by running an
// external speech-to-text command. The command is expected to record from
// the default microphone until it detects silence or hits its own time
// limit, then print the transcript to stdout and exit.
type CommandCapture struct {
	executor exec.CommandExecutor
	command  string
	args     []string
	logger   *logrus.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandCapture returns a capture that invokes command with args.
// The language code ("en", "te", "hi") is appended as the final argument.
func NewCommandCapture(executor exec.CommandExecutor, command string, args ...string) *CommandCapture {
	return &CommandCapture{
		executor: executor,
		command:  command,
		args:     args,
		logger:   logging.New("speech"),
	}
}

// Available reports whether the transcriber command can be found on PATH.
func (c *CommandCapture) Available() bool {
	if c.command == "" {
		return false
	}
	_, err := c.executor.LookPath(c.command)
	return err == nil
}

// Start runs the transcriber and blocks until it produces a transcript,
// fails, or Stop is called.
func (c *CommandCapture) Start(ctx context.Context, lang string) (string, error) {
	if c.command == "" {
		return "", &orchestration.CaptureError{Err: ErrNotAvailable}
	}
	if _, err := c.executor.LookPath(c.command); err != nil {
		return "", &orchestration.CaptureError{Err: ErrNotAvailable}
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return "", &orchestration.CaptureError{Err: ErrAlreadyCapturing}
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
	}()

	args := append(append([]string{}, c.args...), lang)
	c.logger.WithFields(logrus.Fields{
		"command":  c.command,
		"language": lang,
	}).Debug("Starting speech capture")

	out, err := c.executor.Output(runCtx, c.command, args...)
	if err != nil {
		if runCtx.Err() != nil {
			// Stopped by the user; treat whatever was printed as the
			// transcript.
			return strings.TrimSpace(out), nil
		}
		c.logger.WithError(err).Warn("Speech capture failed")
		return "", &orchestration.CaptureError{Err: err}
	}

	transcript := strings.TrimSpace(out)
	c.logger.WithField("chars", len(transcript)).Debug("Speech capture finished")
	return transcript, nil
}

// Stop aborts an in-progress capture. Safe to call when nothing is running.
func (c *CommandCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}
