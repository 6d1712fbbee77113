package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/control"
	"github.com/jwulff/vocabtrack/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// controlTimeout bounds how long a socket client waits for the UI. Exports
// reply when the file is written, so it is generous.
const controlTimeout = 30 * time.Second

// ControlHandler forwards socket commands into the program's update loop.
// Pass tea.Program.Send as send and cancel ctx once the program exits.
func ControlHandler(ctx context.Context, send func(tea.Msg)) control.Handler {
	return func(cmd control.Command) control.Response {
		reply := make(chan control.Response, 1)
		send(ControlMsg{Command: cmd, Reply: reply})
		select {
		case resp := <-reply:
			return resp
		case <-ctx.Done():
			return control.Fail(errors.New("recorder is shutting down"))
		case <-time.After(controlTimeout):
			return control.Fail(errors.New("recorder did not respond"))
		}
	}
}

// handleControl applies one socket command. Every path writes exactly one
// response, export does so once the file is written.
func (m Model) handleControl(msg ControlMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var err error

	c := msg.Command
	switch c.Cmd {
	case control.CmdStatus:
	case control.CmdToggle:
		cmd, err = m.toggle()
	case control.CmdMode:
		if c.Mode == "" {
			cmd = m.setMode(m.editor.Mode().Next())
			break
		}
		var mode clips.Mode
		if mode, err = clips.ParseMode(c.Mode); err == nil {
			cmd = m.setMode(mode)
		}
	case control.CmdSelect:
		if c.Index == nil {
			err = errors.New("select needs an index")
			break
		}
		err = m.editor.Select(*c.Index)
	case control.CmdNext:
		m.editor.StepForward()
	case control.CmdPrev:
		m.editor.StepBackward()
	case control.CmdDelete:
		if c.Index != nil {
			if err = m.editor.Select(*c.Index); err != nil {
				break
			}
		}
		cmd, err = m.deleteSelected()
	case control.CmdExport:
		if cmd, err = m.export(c.Name); err == nil {
			m.refresh()
			return m, replyOnExport(cmd, msg.Reply, m.status())
		}
	default:
		err = fmt.Errorf("unknown command %q", c.Cmd)
	}

	m.refresh()
	if err != nil {
		msg.Reply <- control.Fail(err)
		return m, nil
	}
	msg.Reply <- m.status()
	return m, cmd
}

// replyOnExport runs the export cmd and answers the client with its result.
func replyOnExport(export tea.Cmd, reply chan<- control.Response, status control.Response) tea.Cmd {
	return func() tea.Msg {
		msg := export()
		done, _ := msg.(ExportDoneMsg)
		if done.Err != nil {
			reply <- control.Fail(done.Err)
		} else {
			status.Path = done.Path
			reply <- status
		}
		return msg
	}
}

// status describes the recorder for a control response.
func (m Model) status() control.Response {
	resp := control.Response{
		OK:        true,
		Recording: control.BoolPtr(m.recorder.State() != session.Idle),
		Mode:      m.view.Mode.String(),
		Count:     control.IntPtr(len(m.view.Entries)),
	}
	if i, ok := m.view.Selection.Index(); ok {
		resp.Selected = control.IntPtr(i)
	}
	return resp
}
