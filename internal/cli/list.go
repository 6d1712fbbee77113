package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/vocabtrack/internal/clips"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the clips in the saved project",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			st, err := deps.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			project, err := st.Load()
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}
			if project.Len() == 0 {
				fmt.Fprintln(out, "No recordings yet")
				return nil
			}

			editor := clips.NewEditor()
			project.Apply(editor)
			v := editor.Snapshot()

			asm, err := deps.assembler()
			if err != nil {
				return err
			}
			n, err := asm.Length(project.Clips)
			if err != nil {
				return err
			}

			f := deps.format()
			fmt.Fprintf(out, "mode: %s  track: %.1fs\n", v.Mode, f.Duration(n).Seconds())
			for _, e := range v.Entries {
				marker := " "
				if e.Selected {
					marker = ">"
				}
				fmt.Fprintf(out, "%s %3d  %-28s %6.1fs\n", marker, e.Index, e.Caption, f.Duration(e.Bytes).Seconds())
			}
			return nil
		},
	}

	return cmd
}
