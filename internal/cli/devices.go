package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDevicesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			hw, err := deps.hardware()
			if err != nil {
				return err
			}
			devs, err := hw.Devices()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range devs {
				marker := "  "
				switch {
				case d.DefaultInput && d.DefaultOutput:
					marker = "* "
				case d.DefaultInput:
					marker = "> "
				case d.DefaultOutput:
					marker = "< "
				}
				fmt.Fprintln(out, marker+d.String())
			}
			return nil
		},
	}
}
