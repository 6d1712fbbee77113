// Package control is the NDJSON protocol spoken over the recorder's Unix
// socket, with the server the recorder runs and the client used by scripts
// and the ctl command.
package control

// Command names understood by the recorder.
const (
	CmdStatus = "status"
	CmdToggle = "toggle"
	CmdMode   = "mode"
	CmdSelect = "select"
	CmdNext   = "next"
	CmdPrev   = "prev"
	CmdDelete = "delete"
	CmdExport = "export"
)

// Commands lists every command name in help order.
var Commands = []string{CmdStatus, CmdToggle, CmdMode, CmdSelect, CmdNext, CmdPrev, CmdDelete, CmdExport}

// Command is sent from a client to the recorder.
type Command struct {
	Cmd   string `json:"cmd"`
	Mode  string `json:"mode,omitempty"`
	Index *int   `json:"index,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Response is returned by the recorder after processing a command.
type Response struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Recording *bool  `json:"recording,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Selected  *int   `json:"selected,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Path      string `json:"path,omitempty"`
}

// Fail builds an error response.
func Fail(err error) Response {
	return Response{OK: false, Error: err.Error()}
}

// BoolPtr returns a pointer to a bool value. Convenience for building responses.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to an int value.
func IntPtr(i int) *int { return &i }
