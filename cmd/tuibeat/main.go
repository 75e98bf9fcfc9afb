// Package main provides the CLI entrypoint for tuibeat.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuibeat/internal/audio"
	"github.com/verte-zerg/tuibeat/internal/bundle"
	"github.com/verte-zerg/tuibeat/internal/config"
	"github.com/verte-zerg/tuibeat/internal/generator"
	"github.com/verte-zerg/tuibeat/internal/level"
	"github.com/verte-zerg/tuibeat/internal/model"
	"github.com/verte-zerg/tuibeat/internal/rhythm"
	"github.com/verte-zerg/tuibeat/internal/store"
	"github.com/verte-zerg/tuibeat/internal/tui"
)

const (
	defaultVariant     = "single"
	defaultTick        = "16ms"
	defaultWeakTop     = 2
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
)

var (
	playVariant    string
	playLevel      string
	playTick       string
	playSeed       int64
	playNoAudio    bool
	playLog        string
	playFocusWeak  bool
	playWeakTop    int
	playWeakFactor float64
	playWeakWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuibeat",
		Short:         "Terminal rhythm game",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playVariant, "variant", defaultVariant, "game variant: single or multi")
	rootCmd.Flags().StringVar(&playLevel, "level", "", "level to play (.json or .zip bundle); empty plays endless")
	rootCmd.Flags().StringVar(&playTick, "tick", defaultTick, "frame period")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed for procedural notes (0 uses the clock)")
	rootCmd.Flags().BoolVar(&playNoAudio, "no-audio", false, "do not play bundle tracks or hit/miss cues")
	rootCmd.Flags().StringVar(&playLog, "log", "", "write debug log to file")
	rootCmd.Flags().BoolVar(&playFocusWeak, "focus-weak", false, "bias procedural notes toward weak directions")
	rootCmd.Flags().IntVar(&playWeakTop, "weak-top", defaultWeakTop, "number of weak directions to focus on")
	rootCmd.Flags().Float64Var(&playWeakFactor, "weak-factor", defaultWeakFactor, "extra weight for weak directions")
	rootCmd.Flags().IntVar(&playWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak directions")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newEditorCmd())
	rootCmd.AddCommand(newPackCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "variant", &playVariant, fileCfg.Play.Variant)
	applyStringConfig(cmd, "tick", &playTick, fileCfg.Play.Tick)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Play.Seed)
	applyStringConfig(cmd, "log", &playLog, fileCfg.Play.Log)
	applyBoolConfig(cmd, "focus-weak", &playFocusWeak, fileCfg.Play.FocusWeak)
	applyIntConfig(cmd, "weak-top", &playWeakTop, fileCfg.Play.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &playWeakFactor, fileCfg.Play.WeakFactor)
	applyIntConfig(cmd, "weak-window", &playWeakWindow, fileCfg.Play.WeakWindow)
	if fileCfg.Play.Audio != nil && !cmd.Flags().Changed("no-audio") {
		playNoAudio = !*fileCfg.Play.Audio
	}

	tick, err := time.ParseDuration(playTick)
	if err != nil {
		return fmt.Errorf("invalid --tick value: %w", err)
	}
	cfg := model.Config{
		Variant:    playVariant,
		Level:      playLevel,
		Tick:       tick,
		Seed:       playSeed,
		Audio:      !playNoAudio,
		FocusWeak:  playFocusWeak,
		WeakTop:    playWeakTop,
		WeakFactor: playWeakFactor,
		WeakWindow: playWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	variant, err := rhythm.ParseVariant(cfg.Variant)
	if err != nil {
		return fmt.Errorf("invalid --variant value: %w", err)
	}
	if err := requireTerminal(); err != nil {
		return err
	}

	params := rhythm.DefaultParams(variant)
	params.TickPeriod = cfg.Tick
	opts := tui.Options{
		Config: cfg,
		Params: params,
	}

	if cfg.Level != "" {
		chart, track, err := loadLevel(cfg.Level, cfg.Audio)
		if err != nil {
			return err
		}
		opts.Chart = &chart
		if track != nil {
			defer func() {
				if cerr := track.Close(); cerr != nil {
					// Best-effort decoder close.
					_ = cerr
				}
			}()
			opts.Track = track
		}
	}
	if cfg.Audio {
		player := audio.NewPlayer()
		defer player.Stop()
		opts.Player = player
	}

	if cfg.Seed != 0 {
		opts.Gen = generator.NewSeeded(cfg.Seed)
	} else {
		opts.Gen = generator.New()
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
	opts.Store = st

	closeLog, err := setupLog(playLog)
	if err != nil {
		return err
	}
	defer closeLog()

	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadLevel reads a level file or bundle. A track that fails to decode is
// reported and skipped; the level still plays.
func loadLevel(path string, withAudio bool) (rhythm.Chart, *audio.Track, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		spec, err := level.Load(path)
		if err != nil {
			return rhythm.Chart{}, nil, err
		}
		return spec.Chart(level.Name(path)), nil, nil
	}

	b, err := bundle.Load(path)
	if err != nil {
		return rhythm.Chart{}, nil, fmt.Errorf("failed to load bundle %s: %w", filepath.Base(path), err)
	}
	chart := b.Level.Chart(b.Name)
	if !withAudio {
		return chart, nil, nil
	}
	track, err := audio.Decode(b.Track)
	if err != nil {
		logErrf("audio disabled: %v\n", err)
		return chart, nil, nil
	}
	return chart, track, nil
}

// setupLog routes the log package to path, or discards it so nothing writes
// over the alt screen.
func setupLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "tuibeat")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort log close.
			_ = cerr
		}
	}, nil
}

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tuibeat needs an interactive terminal")
	}
	return nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Tick <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
