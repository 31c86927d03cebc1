package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/olivier-w/tapedeck/internal/config"
	"github.com/olivier-w/tapedeck/internal/logging"
	"github.com/olivier-w/tapedeck/internal/player"
	"github.com/olivier-w/tapedeck/internal/ui"
	"github.com/olivier-w/tapedeck/internal/visualizer"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tapedeck [directory]",
		Short:         "Terminal music player with a live spectrum",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.UI.StartDir = args[0]
			}
			if info, err := os.Stat(cfg.UI.StartDir); err != nil || !info.IsDir() {
				return fmt.Errorf("not a directory: %s", cfg.UI.StartDir)
			}
			return run(cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cfg *config.Config) error {
	log, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info().Str("start_dir", cfg.UI.StartDir).Int("sample_rate", cfg.Audio.SampleRate).Msg("starting")

	buf := visualizer.NewRingBuffer(visualizer.RingCapacity)
	ctrl := player.New(buf, player.DeviceConfig{
		SampleRate:   cfg.Audio.SampleRate,
		ChannelCount: cfg.Audio.Channels,
		BufferSize:   cfg.Audio.BufferSize(),
	}, player.WithLogger(logging.Component(log, "player")))
	defer ctrl.Close()

	viz := visualizer.New(buf, visualizer.WithLogger(logging.Component(log, "visualizer")))

	model := ui.New(ctrl, viz, ui.Options{
		FPS:      cfg.UI.FPS,
		StartDir: cfg.UI.StartDir,
		Logger:   logging.Component(log, "ui"),
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	log.Info().Msg("exiting")
	return nil
}
