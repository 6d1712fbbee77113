package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/vocabtrack/internal/control"
	"github.com/jwulff/vocabtrack/internal/mcpserver"
	"github.com/jwulff/vocabtrack/internal/version"
)

// mcpRecorderTimeout covers an export written by the running recorder.
const mcpRecorderTimeout = 30 * time.Second

func NewMCPCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the saved project as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := deps.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			asm, err := deps.assembler()
			if err != nil {
				return err
			}

			var opts []mcpserver.Option
			if socket := deps.Config.Control.Socket; socket != "" {
				opts = append(opts, mcpserver.WithRecorder(recorderDialer(socket)))
			}
			srv := mcpserver.New(st, asm, deps.Config.Export.Dir, deps.logger().Named("mcp"), opts...)
			return srv.ServeStdio(version.Version)
		},
	}
}

// recorderDialer connects to the recorder behind socket with a bounded wait.
func recorderDialer(socket string) mcpserver.Dialer {
	return func() (mcpserver.Conn, error) {
		c, err := control.Connect(socket)
		if err != nil {
			return nil, err
		}
		c.SetTimeout(mcpRecorderTimeout)
		return c, nil
	}
}
