package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuibeat/internal/bundle"
	"github.com/verte-zerg/tuibeat/internal/config"
	"github.com/verte-zerg/tuibeat/internal/editor"
	"github.com/verte-zerg/tuibeat/internal/generator"
	"github.com/verte-zerg/tuibeat/internal/level"
	"github.com/verte-zerg/tuibeat/internal/model"
	"github.com/verte-zerg/tuibeat/internal/rhythm"
	"github.com/verte-zerg/tuibeat/internal/stats"
	"github.com/verte-zerg/tuibeat/internal/statsui"
	"github.com/verte-zerg/tuibeat/internal/store"
)

var (
	statsMode        string
	statsVariant     string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsText        bool

	configPrintPath bool
	configSample    bool

	editorLog string
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configPrintPath, "path", false, "print the config path and exit")
	cmd.Flags().BoolVar(&configSample, "sample", false, "print a sample config and exit")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	switch {
	case configPrintPath:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	case configSample:
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.Sample())
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Sample()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editorCmd := strings.TrimSpace(os.Getenv("EDITOR"))
	if editorCmd == "" {
		editorCmd = "vi"
	}
	parts := strings.Fields(editorCmd)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	run := exec.Command(parts[0], append(parts[1:], path)...)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	if err := run.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newEditorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editor [file.json]",
		Short: "Edit a level",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEditorCmd,
	}
	cmd.Flags().StringVar(&editorLog, "log", "", "write debug log to file")
	return cmd
}

func runEditorCmd(_ *cobra.Command, args []string) error {
	path := filepath.Join(config.DefaultLevelDir(), "untitled.json")
	if len(args) == 1 {
		path = args[0]
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	closeLog, err := setupLog(editorLog)
	if err != nil {
		return err
	}
	defer closeLog()

	m, err := editor.NewModel(editor.Options{Path: path, Gen: generator.New()})
	if err != nil {
		return fmt.Errorf("failed to open level: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logErrf("failed to stop watcher: %v\n", cerr)
		}
	}()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}
	return nil
}

func newPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <level.json> <song.mp3> <out.zip>",
		Short: "Bundle a level and its track",
		Args:  cobra.ExactArgs(3),
		RunE:  runPackCmd,
	}
}

func runPackCmd(_ *cobra.Command, args []string) error {
	if err := bundle.Pack(args[0], args[1], args[2]); err != nil {
		return err
	}
	logErrf("Wrote %s\n", args[2])
	return nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a level or bundle",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidateCmd,
	}
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	var spec level.Spec
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		b, err := bundle.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		spec = b.Level
	} else {
		loaded, err := level.Load(path)
		if err != nil {
			return err
		}
		spec = loaded
	}
	duration := time.Duration(spec.Duration() * float64(time.Millisecond))
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "ok: %d notes, %.0f bpm, last note at %s\n", len(spec.Notes), spec.BPM, duration)
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: procedural or authored")
	cmd.Flags().StringVar(&statsVariant, "variant", "", "variant filter: single or multi")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "window", &statsCurveWindow, fileCfg.Stats.Window)

	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsText || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printStatsReport(cmd, st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	mode := strings.ToLower(strings.TrimSpace(statsMode))
	if mode != "" && mode != rhythm.ModeProcedural.String() && mode != rhythm.ModeAuthored.String() {
		return model.StatsConfig{}, fmt.Errorf("invalid --mode value %q (want procedural or authored)", statsMode)
	}
	variant := strings.ToLower(strings.TrimSpace(statsVariant))
	if variant != "" {
		if _, err := rhythm.ParseVariant(variant); err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --variant value: %w", err)
		}
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{
		Mode:        mode,
		Variant:     variant,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func printStatsReport(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		logErrln("Play a game first: tuibeat")
		return nil
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, stats.TerminalWidth()); err != nil {
		return err
	}
	if err := stats.RenderDirectionTable(out, report.Directions); err != nil {
		return err
	}
	return stats.RenderSessionTable(out, report.Sessions, 10)
}
