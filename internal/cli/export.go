package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewExportCmd(deps *Dependencies) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write the saved project to a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if dir == "" {
				dir = deps.Config.Export.Dir
			}

			st, err := deps.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			project, err := st.Load()
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}
			asm, err := deps.assembler()
			if err != nil {
				return err
			}

			path, err := asm.ExportNamed(dir, name, time.Now(), project.Clips)
			if err != nil {
				return err
			}
			deps.logger().Info("track exported", zap.String("path", path), zap.Int("clips", project.Len()))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (default from config)")
	return cmd
}
