package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// TUIModeEnv, when set, redirects log output to a file so the terminal stays
// clean while the chat interface owns the screen.
const TUIModeEnv = "COPILOT_TUI_MODE"

var (
	base *logrus.Logger
	once sync.Once
)

// New returns a structured logger entry tagged with the given component.
func New(component string) *logrus.Entry {
	once.Do(setup)
	return base.WithField("component", component)
}

// SetVerbose raises the log level to debug.
func SetVerbose() {
	once.Do(setup)
	base.SetLevel(logrus.DebugLevel)
}

func setup() {
	base = logrus.New()
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if os.Getenv(TUIModeEnv) != "" {
		base.SetOutput(tuiLogWriter())
	} else {
		base.SetOutput(os.Stderr)
	}
}

// tuiLogWriter opens the per-user log file, discarding logs if it cannot.
func tuiLogWriter() io.Writer {
	home, err := os.UserHomeDir()
	if err != nil {
		return io.Discard
	}
	dir := filepath.Join(home, ".local", "state", "cctns-copilot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(filepath.Join(dir, "copilot.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
