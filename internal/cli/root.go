package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/assemble"
	"github.com/jwulff/vocabtrack/internal/audio"
	"github.com/jwulff/vocabtrack/internal/config"
	"github.com/jwulff/vocabtrack/internal/session"
	"github.com/jwulff/vocabtrack/internal/store"
	"github.com/jwulff/vocabtrack/internal/version"
)

type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Audio  audio.Hardware
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vocabtrack",
		Short: "Record vocabulary drills into a single audio track",
		Long: "Record a title, then term and definition pairs, and export them as one WAV file " +
			"with a pause after each term long enough to answer out loud.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecorder(deps)
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewExportCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewCtlCmd(deps))
	rootCmd.AddCommand(NewDevicesCmd(deps))
	rootCmd.AddCommand(NewMCPCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// format is the capture format every clip in a project shares.
func (d *Dependencies) format() audio.Format {
	a := d.Config.Audio
	return audio.Format{SampleRate: a.SampleRate, Channels: a.Channels, ChunkSize: a.ChunkSize}
}

func (d *Dependencies) countdown() session.Countdown {
	c := d.Config.Countdown
	return session.Countdown{
		Steps:    c.Steps,
		Beep:     config.Seconds(c.Beep),
		Interval: config.Seconds(c.Interval),
		Freq:     c.Freq,
		GoBeep:   config.Seconds(c.GoBeep),
		GoFreq:   c.GoFreq,
	}
}

func (d *Dependencies) assembler() (*assemble.Assembler, error) {
	asm, err := assemble.New(assemble.Config{
		SampleRate: d.Config.Audio.SampleRate,
		Channels:   d.Config.Audio.Channels,
		ShortBreak: d.Config.Export.ShortBreakBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("configure assembler: %w", err)
	}
	return asm, nil
}

func (d *Dependencies) openStore() (*store.Store, error) {
	st, err := store.Open(d.Config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", d.Config.Store.Path, err)
	}
	return st, nil
}

func (d *Dependencies) hardware() (audio.Hardware, error) {
	if d.Audio == nil {
		return nil, errors.New("no audio backend configured")
	}
	return d.Audio, nil
}

func (d *Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
