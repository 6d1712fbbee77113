// Package mcpserver exposes the saved project as MCP tools so an assistant
// can inspect and export a deck.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jwulff/vocabtrack/internal/assemble"
	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/control"
	"github.com/jwulff/vocabtrack/internal/store"
)

// Projects loads and saves the project the tools operate on.
type Projects interface {
	Load() (store.Project, error)
	Save(store.Project) error
}

// Conn is a connection to a running recorder.
type Conn interface {
	SendCommand(control.Command) (control.Response, error)
	Close() error
}

// Dialer connects to a running recorder. It fails when none is running.
type Dialer func() (Conn, error)

// ClipInfo describes one clip in list_clips output.
type ClipInfo struct {
	Index     int       `json:"index"`
	Caption   string    `json:"caption"`
	Role      string    `json:"role"`
	Pair      int       `json:"pair,omitempty"`
	Bytes     int       `json:"bytes"`
	Seconds   float64   `json:"seconds"`
	CreatedAt time.Time `json:"createdAt"`
	Selected  bool      `json:"selected,omitempty"`
}

// Listing is the list_clips result.
type Listing struct {
	Mode  string     `json:"mode"`
	Clips []ClipInfo `json:"clips"`
}

// Server holds the tool handlers.
type Server struct {
	projects  Projects
	assembler *assemble.Assembler
	exportDir string
	logger    *zap.Logger
	dial      Dialer
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder sends edits to a running recorder when dial succeeds. The
// recorder saves its whole list, so a change written only to the store
// would be lost on its next save.
func WithRecorder(dial Dialer) Option {
	return func(s *Server) { s.dial = dial }
}

// New returns a Server exporting into exportDir.
func New(projects Projects, assembler *assemble.Assembler, exportDir string, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		projects:  projects,
		assembler: assembler,
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MCP builds the MCP server with every tool registered.
func (s *Server) MCP(version string) *server.MCPServer {
	srv := server.NewMCPServer("vocabtrack", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_clips",
		mcp.WithDescription("List the recorded clips of the saved deck in track order with their roles."),
	), s.handleList)

	srv.AddTool(mcp.NewTool("delete_clip",
		mcp.WithDescription("Delete the clip at an index. Roles of later clips shift."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based clip index from list_clips")),
	), s.handleDelete)

	srv.AddTool(mcp.NewTool("export_track",
		mcp.WithDescription("Assemble the deck into a WAV file with pauses after each term and definition."),
		mcp.WithString("name", mcp.Description("Output name; spaces become hyphens. Defaults to the current time.")),
	), s.handleExport)

	return srv
}

// ServeStdio serves the tools on stdin and stdout until EOF.
func (s *Server) ServeStdio(version string) error {
	return server.ServeStdio(s.MCP(version))
}

func (s *Server) editor() (*clips.Editor, error) {
	p, err := s.projects.Load()
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	e := clips.NewEditor()
	p.Apply(e)
	return e, nil
}

// live sends cmd to a running recorder. ok is false when there is none.
func (s *Server) live(cmd control.Command) (resp control.Response, ok bool, err error) {
	if s.dial == nil {
		return control.Response{}, false, nil
	}
	conn, err := s.dial()
	if err != nil {
		s.logger.Debug("no running recorder", zap.Error(err))
		return control.Response{}, false, nil
	}
	defer conn.Close()

	resp, err = conn.SendCommand(cmd)
	if err != nil {
		return control.Response{}, true, fmt.Errorf("send %s to recorder: %w", cmd.Cmd, err)
	}
	return resp, true, nil
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := s.editor()
	if err != nil {
		return nil, err
	}

	v := e.Snapshot()
	rate := s.assembler.Config().SampleRate * s.assembler.Config().Channels * 2
	out := Listing{Mode: v.Mode.String(), Clips: make([]ClipInfo, 0, len(v.Entries))}
	for _, en := range v.Entries {
		out.Clips = append(out.Clips, ClipInfo{
			Index:     en.Index,
			Caption:   en.Caption,
			Role:      en.Role.String(),
			Pair:      en.Pair,
			Bytes:     en.Bytes,
			Seconds:   float64(en.Bytes) / float64(rate),
			CreatedAt: en.CreatedAt,
			Selected:  en.Selected,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal listing: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, ok, err := s.live(control.Command{Cmd: control.CmdDelete, Index: control.IntPtr(index)})
	if err != nil {
		return nil, err
	}
	if ok {
		if !resp.OK {
			return mcp.NewToolResultError(resp.Error), nil
		}
		remaining := 0
		if resp.Count != nil {
			remaining = *resp.Count
		}
		s.logger.Info("clip deleted in recorder", zap.Int("index", index), zap.Int("remaining", remaining))
		return mcp.NewToolResultText(fmt.Sprintf("Deleted clip %d. %d clips remain.", index, remaining)), nil
	}

	e, err := s.editor()
	if err != nil {
		return nil, err
	}
	if err := e.Select(index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := e.Delete(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.projects.Save(store.Capture(e)); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	s.logger.Info("clip deleted", zap.Int("index", index), zap.Int("remaining", e.Len()))
	return mcp.NewToolResultText(fmt.Sprintf("Deleted clip %d. %d clips remain.", index, e.Len())), nil
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")

	resp, ok, err := s.live(control.Command{Cmd: control.CmdExport, Name: name})
	if err != nil {
		return nil, err
	}
	if ok {
		if !resp.OK {
			return mcp.NewToolResultError(resp.Error), nil
		}
		s.logger.Info("track exported by recorder", zap.String("path", resp.Path))
		return mcp.NewToolResultText("Exported " + resp.Path), nil
	}

	e, err := s.editor()
	if err != nil {
		return nil, err
	}
	path, err := s.assembler.ExportNamed(s.exportDir, name, s.now(), e.Clips())
	if errors.Is(err, clips.ErrUser) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("export track: %w", err)
	}

	s.logger.Info("track exported", zap.String("path", path), zap.Int("clips", e.Len()))
	return mcp.NewToolResultText("Exported " + path), nil
}
