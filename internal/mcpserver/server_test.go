package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jwulff/vocabtrack/internal/assemble"
	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/control"
	"github.com/jwulff/vocabtrack/internal/store"
)

func newTestServer(t *testing.T, n int) (*Server, *store.Store) {
	t.Helper()

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var p store.Project
	base := time.Date(2026, 3, 1, 9, 41, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p.Clips = append(p.Clips, clips.NewClip(make([]byte, 88200)))
		p.Labels = append(p.Labels, clips.Label{ID: "c" + string(rune('0'+i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	if err := st.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	asm, err := assemble.New(assemble.Config{SampleRate: 44100, Channels: 1, ShortBreak: assemble.DefaultShortBreak})
	if err != nil {
		t.Fatalf("assemble.New: %v", err)
	}
	s := New(st, asm, t.TempDir(), nil)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s, st
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestListClips(t *testing.T) {
	s, _ := newTestServer(t, 3)

	res, err := s.handleList(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var got Listing
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Clips) != 3 {
		t.Fatalf("got %d clips, want 3", len(got.Clips))
	}
	roles := []string{got.Clips[0].Role, got.Clips[1].Role, got.Clips[2].Role}
	if strings.Join(roles, ",") != "Title,Term,Def." {
		t.Errorf("roles = %v", roles)
	}
	if got.Clips[1].Caption != "Term 1 (09:42:00)" {
		t.Errorf("caption = %q", got.Clips[1].Caption)
	}
	if got.Clips[0].Seconds != 1 {
		t.Errorf("seconds = %v, want 1", got.Clips[0].Seconds)
	}
	if got.Mode != "append" {
		t.Errorf("mode = %q", got.Mode)
	}
}

func TestDeleteClipSaves(t *testing.T) {
	s, st := newTestServer(t, 3)

	res, err := s.handleDelete(context.Background(), call(map[string]any{"index": float64(1)}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}

	p, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("stored %d clips, want 2", p.Len())
	}
	if p.Labels[1].ID != "c2" {
		t.Errorf("labels[1] = %q, want c2", p.Labels[1].ID)
	}
	if i, ok := p.Selection.Index(); !ok || i != 0 {
		t.Errorf("selection = %v, want 0", p.Selection)
	}
}

func TestDeleteClipBadIndex(t *testing.T) {
	s, st := newTestServer(t, 2)

	res, err := s.handleDelete(context.Background(), call(map[string]any{"index": float64(5)}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for out of range index")
	}
	if p, _ := st.Load(); p.Len() != 2 {
		t.Errorf("stored %d clips, want 2", p.Len())
	}

	res, err = s.handleDelete(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing index")
	}
}

func TestExportTrack(t *testing.T) {
	s, _ := newTestServer(t, 3)

	res, err := s.handleExport(context.Background(), call(map[string]any{"name": "week one"}))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.IsError {
		t.Fatalf("export failed: %s", resultText(t, res))
	}
	path := filepath.Join(s.exportDir, "week-one.wav")
	if !strings.Contains(resultText(t, res), path) {
		t.Errorf("result = %q, want path %q", resultText(t, res), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat: %v", err)
	}
}

func TestExportTrackEmpty(t *testing.T) {
	s, _ := newTestServer(t, 0)

	res, err := s.handleExport(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for empty deck")
	}
}

func TestMCPRegistersTools(t *testing.T) {
	s, _ := newTestServer(t, 0)
	if s.MCP("test") == nil {
		t.Fatal("MCP() = nil")
	}
}

// startRecorder serves a recorder's editor on a control socket the way the
// running UI does for delete and export.
func startRecorder(t *testing.T, s *Server, st *store.Store) *clips.Editor {
	t.Helper()

	p, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := clips.NewEditor()
	p.Apply(rec)

	srv, err := control.Listen(filepath.Join(t.TempDir(), "rec.sock"), func(c control.Command) control.Response {
		switch c.Cmd {
		case control.CmdDelete:
			if err := rec.Select(*c.Index); err != nil {
				return control.Fail(err)
			}
			if err := rec.Delete(); err != nil {
				return control.Fail(err)
			}
		case control.CmdExport:
			path, err := s.assembler.ExportNamed(s.exportDir, c.Name, s.now(), rec.Clips())
			if err != nil {
				return control.Fail(err)
			}
			return control.Response{OK: true, Path: path, Count: control.IntPtr(rec.Len())}
		}
		return control.Response{OK: true, Count: control.IntPtr(rec.Len())}
	}, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })

	s.dial = func() (Conn, error) {
		c, err := control.Connect(srv.Addr())
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return rec
}

func TestDeleteClipGoesThroughRunningRecorder(t *testing.T) {
	s, st := newTestServer(t, 3)
	rec := startRecorder(t, s, st)

	res, err := s.handleDelete(context.Background(), call(map[string]any{"index": float64(1)}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}
	if rec.Len() != 2 {
		t.Fatalf("recorder has %d clips, want 2", rec.Len())
	}

	// The recorder's next save must keep the deletion.
	if err := st.Save(store.Capture(rec)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("stored %d clips after recorder save, want 2", p.Len())
	}
}

func TestDeleteClipRecorderRejects(t *testing.T) {
	s, st := newTestServer(t, 2)
	rec := startRecorder(t, s, st)

	res, err := s.handleDelete(context.Background(), call(map[string]any{"index": float64(4)}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for out of range index")
	}
	if rec.Len() != 2 {
		t.Errorf("recorder has %d clips, want 2", rec.Len())
	}
}

func TestExportTrackThroughRunningRecorder(t *testing.T) {
	s, st := newTestServer(t, 3)
	rec := startRecorder(t, s, st)
	if err := rec.Record(clips.NewClip(make([]byte, 100))); err != nil {
		t.Fatalf("Record: %v", err)
	}

	res, err := s.handleExport(context.Background(), call(map[string]any{"name": "live"}))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.IsError {
		t.Fatalf("export failed: %s", resultText(t, res))
	}
	path := filepath.Join(s.exportDir, "live.wav")
	if resultText(t, res) != "Exported "+path {
		t.Errorf("result = %q", resultText(t, res))
	}
}

func TestNoRecorderFallsBackToStore(t *testing.T) {
	s, st := newTestServer(t, 3)
	s.dial = func() (Conn, error) { return nil, errors.New("connection refused") }

	res, err := s.handleDelete(context.Background(), call(map[string]any{"index": float64(0)}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}
	if p, _ := st.Load(); p.Len() != 2 {
		t.Errorf("stored %d clips, want 2", p.Len())
	}
}

func TestExportTrackRejectsPathInName(t *testing.T) {
	s, _ := newTestServer(t, 3)

	res, err := s.handleExport(context.Background(), call(map[string]any{"name": "../outside"}))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !res.IsError {
		t.Errorf("expected tool error, got %q", resultText(t, res))
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.exportDir), "outside.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written outside the export dir: %v", err)
	}
}
