package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cctns/copilot/cmd/chat_tui"
	"github.com/cctns/copilot/pkg/config"
	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/exec"
	"github.com/cctns/copilot/pkg/executor"
	"github.com/cctns/copilot/pkg/logging"
	"github.com/cctns/copilot/pkg/orchestration"
	"github.com/cctns/copilot/pkg/speech"
	"github.com/cctns/copilot/pkg/translator"
)

var (
	chatLanguage string
	chatDatabase string
	chatOffline  bool
)

func NewChatCmd() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session against the CCTNS database.

Type a question, review the generated SQL, and confirm to run it.
Results are shown as a chart, table, summary or the raw query.

Example:
  copilot chat
  copilot chat --language te --database /data/cctns.db`,
		RunE: runChat,
	}

	chatCmd.Flags().StringVarP(&chatLanguage, "language", "l", "", "Input language: en, te or hi (defaults to config)")
	chatCmd.Flags().StringVarP(&chatDatabase, "database", "d", "", "Path to the CCTNS SQLite database (defaults to config)")
	chatCmd.Flags().BoolVar(&chatOffline, "offline", false, "Demo mode: use canned translations and results instead of Gemini and the database")
	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if chatLanguage != "" {
		cfg.Language = chatLanguage
	}
	if chatDatabase != "" {
		cfg.Database = chatDatabase
	}

	ctrl, cleanup, err := buildController(cfg, chatOffline)
	if err != nil {
		return err
	}
	defer cleanup()

	var capture orchestration.SpeechCapture
	if cfg.Speech.Command != "" {
		capture = speech.NewCommandCapture(&exec.RealCommandExecutor{}, cfg.Speech.Command, cfg.Speech.Args...)
	}

	// Keep stdout clean for the TUI; logs go to the state dir.
	os.Setenv(logging.TUIModeEnv, "true")

	model := chat_tui.NewModel(chat_tui.Options{
		Controller: ctrl,
		Capture:    capture,
		Language:   cfg.Language,
		Theme:      cfg.Theme,
		SaveTheme: func(theme string) error {
			cfg.Theme = theme
			if rootConfigFile != "" {
				return config.SaveTo(cfg, rootConfigFile)
			}
			return config.Save(cfg)
		},
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}

// buildController wires the conversation log, translator and executor. In
// offline mode canned collaborators stand in for Gemini and the database.
func buildController(cfg *config.Config, offline bool) (*orchestration.Controller, func(), error) {
	if offline {
		ctrl := orchestration.NewController(conversation.NewLog(),
			&orchestration.MockTranslator{}, &orchestration.MockExecutor{})
		return ctrl, func() {}, nil
	}

	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return nil, nil, fmt.Errorf("no Gemini API key configured: set gemini.api_key in the config file or the GEMINI_API_KEY environment variable")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, nil, fmt.Errorf("no database configured: set database in the config file or pass --database")
	}
	if _, err := os.Stat(cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("database not found at %s", cfg.Database)
	}

	cacheDir := ""
	if base, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(base, "cctns-copilot", "translations")
	}
	trans := translator.NewGemini(translator.Config{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		CacheDir: cacheDir,
	})

	db, err := executor.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	ctrl := orchestration.NewController(conversation.NewLog(), trans, db)
	return ctrl, func() { db.Close() }, nil
}
