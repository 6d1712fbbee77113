package assemble

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/jwulff/vocabtrack/internal/clips"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := New(Config{SampleRate: 44100, Channels: 1, ShortBreak: DefaultShortBreak})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// pcm returns n bytes of 16-bit little-endian samples all equal to v.
func pcm(v int16, n int) []byte {
	buf := make([]byte, n)
	for i := 0; i+1 < n; i += 2 {
		buf[i] = byte(uint16(v))
		buf[i+1] = byte(uint16(v) >> 8)
	}
	return buf
}

func deck() []clips.Clip {
	return []clips.Clip{
		clips.NewClip(pcm(1, 1000)),                   // title
		{Chunks: [][]byte{pcm(2, 1024), pcm(2, 976)}}, // term 1
		clips.NewClip(pcm(3, 500)),                    // definition 1
	}
}

func TestPlanLayout(t *testing.T) {
	a := newTestAssembler(t)

	segs, err := a.Plan(deck())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := []int{1000, DefaultShortBreak, 2000, DefaultShortBreak, 500, DefaultShortBreak}
	if len(segs) != len(want) {
		t.Fatalf("segments = %d, want %d", len(segs), len(want))
	}
	for i, w := range want {
		if segs[i].Len() != w {
			t.Errorf("segment %d len = %d, want %d", i, segs[i].Len(), w)
		}
	}
	if segs[2].Role != clips.RoleTerm || segs[3].Silence == 0 {
		t.Errorf("segment 3 should be the term pause, got %+v", segs[3])
	}
}

func TestScenarioLength(t *testing.T) {
	a := newTestAssembler(t)

	n, err := a.Length(deck())
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	want := 1000 + DefaultShortBreak + 2000 + DefaultShortBreak + 500 + DefaultShortBreak
	if n != want {
		t.Errorf("length = %d, want %d", n, want)
	}
}

func TestTermDelay(t *testing.T) {
	a := newTestAssembler(t)

	tests := []struct {
		termLen int
		want    int
	}{
		{0, DefaultShortBreak},
		{2000, DefaultShortBreak},
		{44100 * 4, DefaultShortBreak},
		{44100*5 + 17, 44100 * 5},
		{44100*9 - 1, 44100 * 8},
	}
	for _, tt := range tests {
		if got := a.TermDelay(tt.termLen); got != tt.want {
			t.Errorf("TermDelay(%d) = %d, want %d", tt.termLen, got, tt.want)
		}
	}
}

func TestLongTermGetsLongerPause(t *testing.T) {
	a := newTestAssembler(t)
	long := 44100 * 6
	cs := []clips.Clip{
		clips.NewClip(pcm(1, 10)),
		clips.NewClip(pcm(2, long)),
	}

	n, err := a.Length(cs)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if want := 10 + DefaultShortBreak + long + long; n != want {
		t.Errorf("length = %d, want %d", n, want)
	}
}

func TestOutputCoversClipsAndGaps(t *testing.T) {
	a := newTestAssembler(t)
	var cs []clips.Clip
	sum := 0
	for i := 0; i < 9; i++ {
		n := 100 * (i + 1) * 37
		cs = append(cs, clips.NewClip(pcm(int16(i), n)))
		sum += n
	}

	n, err := a.Length(cs)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	// One gap per clip, each at least a short break.
	if floor := sum + len(cs)*DefaultShortBreak; n < floor {
		t.Errorf("length = %d, want at least %d", n, floor)
	}
}

func TestWriteToStreamsPCM(t *testing.T) {
	a := newTestAssembler(t)
	var buf bytes.Buffer

	n, err := a.WriteTo(&buf, deck())
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if int(n) != buf.Len() {
		t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.Bytes()
	if !bytes.Equal(out[:1000], pcm(1, 1000)) {
		t.Error("output should start with the title clip")
	}
	if !bytes.Equal(out[1000:1000+DefaultShortBreak], make([]byte, DefaultShortBreak)) {
		t.Error("title should be followed by a silent short break")
	}
	termStart := 1000 + DefaultShortBreak
	if !bytes.Equal(out[termStart:termStart+2000], pcm(2, 2000)) {
		t.Error("term clip bytes mismatch")
	}
}

func TestEmptyListNothingToExport(t *testing.T) {
	a := newTestAssembler(t)

	if _, err := a.Plan(nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Plan err = %v", err)
	}
	if _, err := a.WriteTo(&bytes.Buffer{}, nil); !errors.Is(err, clips.ErrUser) {
		t.Errorf("WriteTo err = %v, want user error", err)
	}

	path := filepath.Join(t.TempDir(), "empty.wav")
	if err := a.Export(path, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Export err = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("export of an empty list should not create a file")
	}
}

func TestExportWAV(t *testing.T) {
	a := newTestAssembler(t)
	path := filepath.Join(t.TempDir(), "deck.wav")

	if err := a.Export(path, deck()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if d.NumChans != 1 || d.SampleRate != 44100 || d.BitDepth != 16 {
		t.Errorf("format = %d ch, %d Hz, %d bit", d.NumChans, d.SampleRate, d.BitDepth)
	}

	wantSamples := (1000 + DefaultShortBreak + 2000 + DefaultShortBreak + 500 + DefaultShortBreak) / 2
	if len(buf.Data) != wantSamples {
		t.Fatalf("samples = %d, want %d", len(buf.Data), wantSamples)
	}
	if buf.Data[0] != 1 || buf.Data[499] != 1 {
		t.Errorf("title samples = %d, %d, want 1", buf.Data[0], buf.Data[499])
	}
	if buf.Data[500] != 0 {
		t.Errorf("break sample = %d, want 0", buf.Data[500])
	}
	termStart := (1000 + DefaultShortBreak) / 2
	if buf.Data[termStart] != 2 {
		t.Errorf("term sample = %d, want 2", buf.Data[termStart])
	}
}

func TestExportCarriesOddChunkBoundaries(t *testing.T) {
	a := newTestAssembler(t)
	path := filepath.Join(t.TempDir(), "odd.wav")
	title := pcm(-300, 10)
	cs := []clips.Clip{{Chunks: [][]byte{title[:3], title[3:]}}}

	if err := a.Export(path, cs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	for i := 0; i < 5; i++ {
		if buf.Data[i] != -300 {
			t.Errorf("sample %d = %d, want -300", i, buf.Data[i])
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.Unix(1714556460, 0)

	tests := []struct {
		name string
		want string
	}{
		{"spanish verbs", "spanish-verbs.wav"},
		{"deck", "deck.wav"},
		{"", "1714556460.wav"},
		{"   ", "1714556460.wav"},
		{"a b  c", "a-b--c.wav"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, now); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{SampleRate: 0, Channels: 1}); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := New(Config{SampleRate: 44100, Channels: 3}); err == nil {
		t.Error("expected error for 3 channels")
	}
}

func TestExportNamed(t *testing.T) {
	a := newTestAssembler(t)
	dir := t.TempDir()
	now := time.Unix(1700000000, 0)

	path, err := a.ExportNamed(dir, "spanish verbs", now, []clips.Clip{clips.NewClip(pcm(1, 100))})
	if err != nil {
		t.Fatalf("ExportNamed: %v", err)
	}
	if path != filepath.Join(dir, "spanish-verbs.wav") {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat: %v", err)
	}

	if _, err := a.ExportNamed(dir, "", now, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("empty export err = %v, want ErrNothingToExport", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "1700000000.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty export should not create a file: %v", err)
	}
}

func TestExportNamedStaysInDir(t *testing.T) {
	a := newTestAssembler(t)
	parent := t.TempDir()
	dir := filepath.Join(parent, "decks")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cs := []clips.Clip{clips.NewClip(pcm(1, 100))}
	now := time.Unix(1700000000, 0)

	for _, name := range []string{"../escaped", "sub/deck", `..\escaped`, "/tmp/abs"} {
		if _, err := a.ExportNamed(dir, name, now, cs); !errors.Is(err, ErrBadName) || !errors.Is(err, clips.ErrUser) {
			t.Errorf("ExportNamed(%q) err = %v, want ErrBadName", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(parent, "escaped.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written outside the export dir: %v", err)
	}

	path, err := a.ExportNamed(dir, "..", now, cs)
	if err != nil {
		t.Fatalf("ExportNamed(..): %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want it inside %q", path, dir)
	}
}
