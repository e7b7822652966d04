package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cctns/copilot/pkg/conversation"
	"github.com/cctns/copilot/pkg/render"
)

var (
	askLanguage string
	askDatabase string
	askRun      bool
	askJSON     bool
	askOffline  bool
)

func NewAskCmd() *cobra.Command {
	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Translate a single question to SQL, optionally run it",
		Long: `Translate one natural language question into a SQL query and print it.
With --run the query is also executed and the results printed.

Examples:
  copilot ask "Show total crimes in Guntur district"
  copilot ask --run "How many FIRs are open in Krishna district?"
  copilot ask --run --json "FIRs by crime type in Guntur" | jq .`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "", "Input language: en, te or hi (defaults to config)")
	askCmd.Flags().StringVarP(&askDatabase, "database", "d", "", "Path to the CCTNS SQLite database (defaults to config)")
	askCmd.Flags().BoolVar(&askRun, "run", false, "Execute the generated query after translating")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print results as JSON")
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "Demo mode: use canned translations and results instead of Gemini and the database")
	return askCmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if askLanguage != "" {
		cfg.Language = askLanguage
	}
	if askDatabase != "" {
		cfg.Database = askDatabase
	}

	ctrl, cleanup, err := buildController(cfg, askOffline)
	if err != nil {
		return err
	}
	defer cleanup()

	question := strings.TrimSpace(args[0])
	turn, err := ctrl.Submit(question, cfg.Language)
	if err != nil {
		return err
	}

	ctx := context.Background()
	turn, err = ctrl.RunTranslation(ctx, turn.ID)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if !askRun {
		return printQueryOnly(turn.IntroText, turn.GeneratedQuery)
	}

	if _, err := ctrl.Confirm(turn.ID); err != nil {
		return err
	}
	turn, err = ctrl.RunExecution(ctx, turn.ID)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	msg, err := ctrl.Log().Get(turn.SystemMessageID)
	if err != nil {
		return err
	}
	if msg.Artifact == nil {
		return fmt.Errorf("no result produced")
	}
	return printArtifact(turn.GeneratedQuery, *msg.Artifact)
}

func printQueryOnly(intro, query string) error {
	if askJSON {
		return printJSON(map[string]string{"intro_text": intro, "query": query})
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd())
	if useColor {
		color.New(color.Faint).Println(intro)
		color.New(color.FgGreen).Println(query)
	} else {
		fmt.Println(intro)
		fmt.Println(query)
	}
	return nil
}

func printArtifact(query string, art conversation.Artifact) error {
	if askJSON {
		return printJSON(map[string]any{
			"title":   art.Title,
			"query":   query,
			"summary": art.SummaryText,
			"columns": art.Columns,
			"rows":    art.TableRows,
			"chart":   art.ChartSeries,
		})
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd())
	titlePrint := fmt.Println
	if useColor {
		titlePrint = color.New(color.Bold).Println
	}

	titlePrint(art.Title)
	fmt.Println()
	if len(art.Columns) > 0 {
		fmt.Println(render.Table(art.Columns, art.TableRows))
		fmt.Println()
	}
	if art.SummaryText != "" {
		fmt.Println(art.SummaryText)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
