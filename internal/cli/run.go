package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/app"
	"github.com/jwulff/vocabtrack/internal/audio"
	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/control"
	"github.com/jwulff/vocabtrack/internal/session"
	"github.com/jwulff/vocabtrack/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// runRecorder restores the saved project, runs the UI and saves on exit.
func runRecorder(deps *Dependencies) error {
	log := deps.logger()

	st, err := deps.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	project, err := st.Load()
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	editor := clips.NewEditor()
	project.Apply(editor)

	asm, err := deps.assembler()
	if err != nil {
		return err
	}

	dev, err := deps.hardware()
	if err != nil {
		return err
	}
	format := deps.format()
	player := audio.NewPlayer(dev, format)
	sess := session.New(dev, format, editor.Record,
		session.WithLogger(log.Named("session")),
		session.WithCountdown(deps.countdown()),
		session.WithBeeper(player),
	)

	model := app.New(app.Deps{
		Editor:    editor,
		Recorder:  sess,
		Player:    player,
		Assembler: asm,
		Projects:  st,
		ExportDir: deps.Config.Export.Dir,
		Logger:    log.Named("ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var srv *control.Server
	if socket := deps.Config.Control.Socket; socket != "" {
		srv, err = control.Listen(socket, app.ControlHandler(ctx, p.Send), log.Named("control"))
		if err != nil {
			log.Warn("control socket disabled", zap.Error(err))
			srv = nil
		} else {
			go srv.Serve()
		}
	}

	log.Info("recorder started", zap.Int("clips", project.Len()), zap.String("store", deps.Config.Store.Path))
	_, runErr := p.Run()
	cancel()
	if srv != nil {
		srv.Close()
	}
	sess.Stop()
	// Let a capture in flight deliver its clip before the final save.
	for deadline := time.Now().Add(2 * time.Second); sess.State() != session.Idle && time.Now().Before(deadline); {
		time.Sleep(10 * time.Millisecond)
	}

	if err := st.Save(store.Capture(editor)); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	log.Info("recorder stopped", zap.Int("clips", editor.Len()))
	return runErr
}
