package app

import "github.com/jwulff/vocabtrack/internal/control"

// RecordingDoneMsg is sent when a capture cycle ends. On success the clip
// has already been inserted by the session's delivery function.
type RecordingDoneMsg struct {
	Err error
}

// RecordingTickMsg refreshes the countdown and capture indicator.
type RecordingTickMsg struct{}

// PlaybackDoneMsg is sent when playback of the selected clip finishes.
type PlaybackDoneMsg struct {
	Err error
}

// ExportDoneMsg carries the result of writing the track.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// SavedMsg carries the result of an autosave.
type SavedMsg struct {
	Err error
}

// ControlMsg is a command from the control socket. Update writes exactly
// one response to Reply.
type ControlMsg struct {
	Command control.Command
	Reply   chan<- control.Response
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct {
	Seq int
}
