package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/txwater/studymap/pkg/scene"
)

func (c *CLI) scenesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scene presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Scenes"))
			for _, name := range scene.Names() {
				s, err := scene.Preset(name)
				if err != nil {
					return err
				}
				printKeyValue(name, s.Description)
				printDetail("%s → %s", s.BBox, s.Output)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "show <name>",
		Short:             "Print a preset's TOML source",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := scene.PresetSource(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(src)
			return err
		},
	})

	return cmd
}

// completeScenes offers preset names for the first argument.
func completeScenes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return scene.Names(), cobra.ShellCompDirectiveDefault
}
