package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/vocabtrack/internal/control"
)

func NewCtlCmd(deps *Dependencies) *cobra.Command {
	var socket string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ctl <command> [arg]",
		Short: "Send a command to the running recorder",
		Long: "Send a command to the running recorder over its control socket.\n\n" +
			"Commands: " + strings.Join(control.Commands, ", ") + "\n" +
			"  mode [append|prepend|rerecord]   set or cycle the insertion mode\n" +
			"  select <index>                   highlight a clip\n" +
			"  delete [index]                   delete the selected clip or the one at index\n" +
			"  export [name]                    write the track",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseControlArgs(args)
			if err != nil {
				return err
			}
			if socket == "" {
				socket = deps.Config.Control.Socket
			}
			if socket == "" {
				return errors.New("control socket is disabled in the config")
			}

			client, err := control.Connect(socket)
			if err != nil {
				return fmt.Errorf("is the recorder running? %w", err)
			}
			defer client.Close()
			client.SetTimeout(timeout)

			resp, err := client.SendCommand(c)
			if err != nil {
				return err
			}
			if !resp.OK {
				return errors.New(resp.Error)
			}

			data, err := json.Marshal(resp)
			if err != nil {
				return fmt.Errorf("marshal response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&socket, "socket", "", "control socket path (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the recorder (0 waits forever)")
	return cmd
}

// parseControlArgs turns "select 3" style arguments into a command.
func parseControlArgs(args []string) (control.Command, error) {
	c := control.Command{Cmd: args[0]}
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	switch c.Cmd {
	case control.CmdMode:
		c.Mode = arg
	case control.CmdExport:
		c.Name = arg
	case control.CmdSelect, control.CmdDelete:
		if arg == "" {
			if c.Cmd == control.CmdSelect {
				return c, errors.New("select needs an index")
			}
			break
		}
		i, err := strconv.Atoi(arg)
		if err != nil {
			return c, fmt.Errorf("bad index %q: %w", arg, err)
		}
		c.Index = &i
	case control.CmdStatus, control.CmdToggle, control.CmdNext, control.CmdPrev:
		if arg != "" {
			return c, fmt.Errorf("%s takes no argument", c.Cmd)
		}
	default:
		return c, fmt.Errorf("unknown command %q (want one of %s)", c.Cmd, strings.Join(control.Commands, ", "))
	}
	return c, nil
}
