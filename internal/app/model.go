// Package app is the recorder's terminal UI.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/assemble"
	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/session"
	"github.com/jwulff/vocabtrack/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Recorder starts and stops capture cycles.
type Recorder interface {
	Toggle() (<-chan error, error)
	Stop()
	State() session.State
}

// Player plays raw PCM through the output device.
type Player interface {
	Play(pcm []byte) error
}

// Projects persists the project after each edit.
type Projects interface {
	Save(store.Project) error
}

// Deps are the collaborators the model drives. Projects may be nil to
// disable autosave.
type Deps struct {
	Editor    *clips.Editor
	Recorder  Recorder
	Player    Player
	Assembler *assemble.Assembler
	Projects  Projects
	ExportDir string
	Logger    *zap.Logger
}

// prompt is the dialog currently capturing keys.
type prompt int

const (
	promptNone prompt = iota
	promptSave
	promptName
	promptQuit
)

// Model is the root bubbletea model for the recorder.
type Model struct {
	editor    *clips.Editor
	recorder  Recorder
	player    Player
	assembler *assemble.Assembler
	saver     *autosaver
	exportDir string
	logger    *zap.Logger
	now       func() time.Time

	// Derived from the editor after every change.
	view clips.View

	// Capture cycles started but not yet reported done.
	pending   int
	playing   bool
	exporting bool

	prompt prompt
	input  textinput.Model
	help   help.Model

	width  int
	height int

	errorMessage string
	errorSeq     int
	statusText   string
	saveSeq      int
}

// New creates a Model over deps.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "leave empty for a timestamp"
	ti.CharLimit = 120
	ti.Width = 40

	m := Model{
		editor:     deps.Editor,
		recorder:   deps.Recorder,
		player:     deps.Player,
		assembler:  deps.Assembler,
		exportDir:  deps.ExportDir,
		logger:     logger,
		now:        time.Now,
		input:      ti,
		help:       help.New(),
		statusText: "Ready",
	}
	if deps.Projects != nil {
		m.saver = &autosaver{projects: deps.Projects}
	}
	m.refresh()
	return m
}

// Init sets the terminal title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("vocabtrack")
}

// waitRecordingCmd blocks until the capture cycle ends.
func waitRecordingCmd(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return RecordingDoneMsg{Err: <-done}
	}
}

// recordingTickCmd refreshes the recording indicator.
func recordingTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return RecordingTickMsg{}
	})
}

// playCmd plays pcm in the background.
func playCmd(p Player, pcm []byte) tea.Cmd {
	return func() tea.Msg {
		return PlaybackDoneMsg{Err: p.Play(pcm)}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd(seq int) tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{Seq: seq}
	})
}

// autosaver serializes saves so an older snapshot never overwrites a newer
// one.
type autosaver struct {
	mu       sync.Mutex
	projects Projects
	saved    int
}

func (a *autosaver) cmd(seq int, p store.Project) tea.Cmd {
	return func() tea.Msg {
		a.mu.Lock()
		defer a.mu.Unlock()
		if seq <= a.saved {
			return nil
		}
		a.saved = seq
		return SavedMsg{Err: a.projects.Save(p)}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case RecordingTickMsg:
		if m.pending > 0 {
			return m, recordingTickCmd()
		}
		return m, nil

	case RecordingDoneMsg:
		m.pending = max(0, m.pending-1)
		m.refresh()
		switch {
		case msg.Err == nil:
			m.statusText = "Recorded " + m.selectedCaption()
			m.logger.Info("clip recorded", zap.Int("count", len(m.view.Entries)))
			return m, m.autosave()
		case errors.Is(msg.Err, session.ErrCanceled):
			m.statusText = "Recording canceled"
			return m, nil
		default:
			m.logger.Warn("recording failed", zap.Error(msg.Err))
			m.statusText = "Ready"
			return m, m.showError(msg.Err)
		}

	case PlaybackDoneMsg:
		m.playing = false
		m.statusText = "Ready"
		if msg.Err != nil {
			m.logger.Warn("playback failed", zap.Error(msg.Err))
			return m, m.showError(msg.Err)
		}
		return m, nil

	case ExportDoneMsg:
		m.exporting = false
		if msg.Err != nil {
			m.statusText = "Ready"
			m.logger.Warn("export failed", zap.Error(msg.Err))
			return m, m.showError(msg.Err)
		}
		m.statusText = "Saved " + msg.Path
		m.logger.Info("track exported", zap.String("path", msg.Path))
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.logger.Error("autosave failed", zap.Error(msg.Err))
			return m, m.showError(fmt.Errorf("autosave: %w", msg.Err))
		}
		return m, nil

	case ControlMsg:
		return m.handleControl(msg)

	case ClearTransientErrorMsg:
		if msg.Seq == m.errorSeq {
			m.errorMessage = ""
		}
		return m, nil
	}

	if m.prompt == promptName {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, m.quit()
	}

	switch m.prompt {
	case promptSave:
		switch {
		case key.Matches(msg, keys.Yes):
			m.prompt = promptName
			m.input.SetValue("")
			return m, m.input.Focus()
		case key.Matches(msg, keys.No):
			m.prompt = promptNone
		}
		return m, nil

	case promptName:
		switch {
		case key.Matches(msg, keys.Confirm):
			m.prompt = promptNone
			m.input.Blur()
			cmd, err := m.export(m.input.Value())
			if err != nil {
				return m, m.showError(err)
			}
			return m, cmd
		case key.Matches(msg, keys.Cancel):
			m.prompt = promptNone
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case promptQuit:
		switch {
		case key.Matches(msg, keys.Yes):
			return m, m.quit()
		case key.Matches(msg, keys.No):
			m.prompt = promptNone
		}
		return m, nil
	}

	var cmd tea.Cmd
	var err error
	switch {
	case key.Matches(msg, keys.Record):
		cmd, err = m.toggle()
	case key.Matches(msg, keys.Play):
		cmd, err = m.play()
	case key.Matches(msg, keys.Prev):
		m.editor.StepBackward()
	case key.Matches(msg, keys.Next):
		m.editor.StepForward()
	case key.Matches(msg, keys.PrevPair):
		m.editor.PrevPair()
	case key.Matches(msg, keys.NextPair):
		m.editor.NextPair()
	case key.Matches(msg, keys.Mode):
		cmd = m.setMode(m.editor.Mode().Next())
	case key.Matches(msg, keys.Append):
		cmd = m.setMode(clips.ModeAppend)
	case key.Matches(msg, keys.Prepend):
		cmd = m.setMode(clips.ModePrepend)
	case key.Matches(msg, keys.ReRecord):
		cmd = m.setMode(clips.ModeReRecord)
	case key.Matches(msg, keys.Delete):
		cmd, err = m.deleteSelected()
	case key.Matches(msg, keys.Save):
		if !m.exporting {
			m.prompt = promptSave
		}
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Quit):
		m.prompt = promptQuit
	}

	m.refresh()
	if err != nil {
		return m, m.showError(err)
	}
	return m, cmd
}

// toggle starts a capture cycle, or stops the running one.
func (m *Model) toggle() (tea.Cmd, error) {
	if m.recorder.State() == session.Idle {
		if err := m.editor.CanRecord(); err != nil {
			return nil, err
		}
	}
	done, err := m.recorder.Toggle()
	if err != nil {
		return nil, err
	}
	if done == nil {
		m.statusText = "Stopping..."
		return nil, nil
	}
	m.pending++
	m.statusText = "Recording (" + m.editor.Mode().String() + ")"
	return tea.Batch(waitRecordingCmd(done), recordingTickCmd()), nil
}

// play starts playback of the selected clip.
func (m *Model) play() (tea.Cmd, error) {
	if m.playing {
		return nil, nil
	}
	c, _, err := m.editor.Selected()
	if err != nil {
		return nil, err
	}
	m.playing = true
	m.statusText = "Playing " + m.selectedCaption()
	return playCmd(m.player, c.Bytes()), nil
}

func (m *Model) setMode(mode clips.Mode) tea.Cmd {
	m.editor.SetMode(mode)
	m.statusText = "Mode: " + mode.String()
	return m.autosave()
}

func (m *Model) deleteSelected() (tea.Cmd, error) {
	caption := m.selectedCaption()
	if err := m.editor.Delete(); err != nil {
		return nil, err
	}
	m.statusText = "Deleted " + caption
	return m.autosave(), nil
}

// export writes the track in the background. Failures before any work
// starts are returned directly.
func (m *Model) export(name string) (tea.Cmd, error) {
	cs := m.editor.Clips()
	if len(cs) == 0 {
		return nil, assemble.ErrNothingToExport
	}
	m.exporting = true
	m.statusText = "Writing track..."
	asm, dir, now := m.assembler, m.exportDir, m.now()
	return func() tea.Msg {
		path, err := asm.ExportNamed(dir, name, now, cs)
		return ExportDoneMsg{Path: path, Err: err}
	}, nil
}

func (m *Model) autosave() tea.Cmd {
	if m.saver == nil {
		return nil
	}
	m.saveSeq++
	return m.saver.cmd(m.saveSeq, store.Capture(m.editor))
}

// quit stops any capture in flight. The caller saves after the program
// exits.
func (m *Model) quit() tea.Cmd {
	m.recorder.Stop()
	return tea.Quit
}

func (m *Model) showError(err error) tea.Cmd {
	m.errorMessage = err.Error()
	m.errorSeq++
	return clearTransientErrorCmd(m.errorSeq)
}

func (m *Model) refresh() {
	m.view = m.editor.Snapshot()
}

func (m Model) selectedCaption() string {
	if i, ok := m.view.Selection.Index(); ok && i < len(m.view.Entries) {
		return m.view.Entries[i].Caption
	}
	return ""
}
