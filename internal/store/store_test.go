package store

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwulff/vocabtrack/internal/clips"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func project(n int) Project {
	base := time.Date(2026, 3, 1, 9, 41, 0, 0, time.UTC)
	var p Project
	for i := 0; i < n; i++ {
		p.Clips = append(p.Clips, clips.NewClip(bytes.Repeat([]byte{byte(i + 1)}, 4*(i+1))))
		p.Labels = append(p.Labels, clips.Label{
			ID:        "clip-" + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	return p
}

func TestLoadEmpty(t *testing.T) {
	s := createTestStore(t)

	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("got %d clips, want 0", p.Len())
	}
	if p.Mode != clips.ModeAppend {
		t.Errorf("mode = %v, want append", p.Mode)
	}
	if p.Selection.IsSet() {
		t.Errorf("selection = %v, want none", p.Selection)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := createTestStore(t)
	want := project(3)
	want.Mode = clips.ModeReRecord
	want.Selection = clips.At(2)

	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Len() != 3 {
		t.Fatalf("got %d clips, want 3", got.Len())
	}
	for i := range want.Clips {
		if !bytes.Equal(got.Clips[i].Bytes(), want.Clips[i].Bytes()) {
			t.Errorf("clip %d pcm differs", i)
		}
		if got.Labels[i].ID != want.Labels[i].ID {
			t.Errorf("labels[%d].ID = %q, want %q", i, got.Labels[i].ID, want.Labels[i].ID)
		}
		if !got.Labels[i].CreatedAt.Equal(want.Labels[i].CreatedAt) {
			t.Errorf("labels[%d].CreatedAt = %v, want %v", i, got.Labels[i].CreatedAt, want.Labels[i].CreatedAt)
		}
	}
	if got.Mode != clips.ModeReRecord {
		t.Errorf("mode = %v, want rerecord", got.Mode)
	}
	if i, ok := got.Selection.Index(); !ok || i != 2 {
		t.Errorf("selection = %v, want 2", got.Selection)
	}
}

func TestSaveReplacesPreviousProject(t *testing.T) {
	s := createTestStore(t)

	if err := s.Save(project(5)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	smaller := project(2)
	if err := s.Save(smaller); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("got %d clips, want 2", got.Len())
	}
	if got.Selection.IsSet() {
		t.Errorf("selection = %v, want none", got.Selection)
	}
}

func TestSaveRejectsMismatchedLabels(t *testing.T) {
	s := createTestStore(t)
	p := project(2)
	p.Labels = p.Labels[:1]

	if err := s.Save(p); err == nil {
		t.Error("expected error for mismatched labels")
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vocabtrack.sqlite")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := project(1)
	p.Mode = clips.ModePrepend
	if err := s.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 || got.Mode != clips.ModePrepend {
		t.Errorf("got len=%d mode=%v, want 1 prepend", got.Len(), got.Mode)
	}
}

func TestTimeFromUnix(t *testing.T) {
	ts := 1700000000.5
	got := timeFromUnix(ts)
	if got.Unix() != 1700000000 {
		t.Errorf("Unix() = %d, want 1700000000", got.Unix())
	}
	if got.Nanosecond() != 500000000 {
		t.Errorf("Nanosecond() = %d, want 500000000", got.Nanosecond())
	}
}

func TestCaptureApply(t *testing.T) {
	e := clips.NewEditor()
	project(3).Apply(e)
	e.SetMode(clips.ModePrepend)
	if err := e.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}

	p := Capture(e)
	if p.Len() != 3 {
		t.Fatalf("captured %d clips, want 3", p.Len())
	}
	if p.Mode != clips.ModePrepend {
		t.Errorf("mode = %v, want prepend", p.Mode)
	}
	if i, ok := p.Selection.Index(); !ok || i != 1 {
		t.Errorf("selection = %v, want 1", p.Selection)
	}

	restored := clips.NewEditor()
	p.Apply(restored)
	v := restored.Snapshot()
	if len(v.Entries) != 3 || !v.Entries[1].Selected {
		t.Errorf("restored view = %+v", v)
	}
}
