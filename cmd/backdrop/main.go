// Command backdrop mounts an animated background scene in a window, or in
// the terminal when graphics are unavailable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/phanxgames/backdrop"
	"github.com/phanxgames/backdrop/termview"
)

var flags struct {
	preset     string
	configPath string
	terminal   bool
	profile    string
	debug      bool
	fps        bool
	script     string
	width      int
	height     int
}

var rootCmd = &cobra.Command{
	Use:   "backdrop",
	Short: "Animated 3D background scenes",
	Long: `backdrop renders a persistent animated scene: a rotating star field with
an orbiting globe (cosmic), floating block letters that bob, jump and light
up under the pointer (letters), or binary digits shed by the pointer
(trail). Without graphics it falls back to a terminal star field.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a window and run a preset",
	RunE:  runPreset,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"TOML config file (empty uses defaults)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false,
		"Log lifecycle events and per-frame render stats")

	runCmd.Flags().StringVarP(&flags.preset, "preset", "p", "cosmic",
		"Scene preset: cosmic, letters or trail")
	runCmd.Flags().BoolVarP(&flags.terminal, "terminal", "t", false,
		"Render in the terminal instead of a window")
	runCmd.Flags().StringVar(&flags.profile, "profile", "",
		"Write a cpu or mem profile to the working directory")
	runCmd.Flags().BoolVar(&flags.fps, "fps", false,
		"Show the FPS overlay")
	runCmd.Flags().StringVar(&flags.script, "script", "",
		"JSON test script to drive the window")
	runCmd.Flags().IntVar(&flags.width, "width", 1280, "Window width")
	runCmd.Flags().IntVar(&flags.height, "height", 720, "Window height")

	rootCmd.AddCommand(runCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (backdrop.Config, error) {
	cfg := backdrop.DefaultConfig()
	if flags.configPath != "" {
		var err error
		if cfg, err = backdrop.LoadConfig(flags.configPath); err != nil {
			return cfg, err
		}
	}
	if flags.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func presetContent(name string) (backdrop.Content, error) {
	switch name {
	case "cosmic":
		return backdrop.NewCosmic(), nil
	case "letters":
		return backdrop.NewLetters(), nil
	case "trail":
		return backdrop.NewTrail(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (want cosmic, letters or trail)", name)
	}
}

func runPreset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	content, err := presetContent(flags.preset)
	if err != nil {
		return err
	}

	switch flags.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q (want cpu or mem)", flags.profile)
	}

	// Terminal output and slog on stderr would interleave.
	if flags.terminal {
		return runTerminal(cmd.Context(), cfg)
	}
	logger := newLogger(cfg.Debug)

	var script []byte
	if flags.script != "" {
		if script, err = os.ReadFile(flags.script); err != nil {
			return fmt.Errorf("read script: %w", err)
		}
	}
	err = backdrop.Run(backdrop.RunConfig{
		Title:      "backdrop - " + flags.preset,
		Width:      flags.width,
		Height:     flags.height,
		Config:     cfg,
		ShowFPS:    flags.fps,
		TestScript: script,
		Logger:     logger,
	}, content)
	if errors.Is(err, backdrop.ErrCapabilityUnavailable) || errors.Is(err, backdrop.ErrResourceAcquisition) {
		logger.Warn("falling back to terminal view", "error", err)
		return runTerminal(cmd.Context(), cfg)
	}
	return err
}

func runTerminal(ctx context.Context, cfg backdrop.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	// Terminals cannot show thousands of stars legibly.
	cfg.ObjectCount = min(cfg.ObjectCount, 600)
	view := termview.New(screen, cfg, rand.New(rand.NewPCG(seed, seed)))
	return view.Run(ctx, 30)
}
