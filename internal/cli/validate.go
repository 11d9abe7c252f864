package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/txwater/studymap/pkg/scene"
)

func (c *CLI) validateCommand() *cobra.Command {
	var (
		print   bool
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "validate [scene]",
		Short: "Parse and validate a scene without rendering",
		Long: `Parse and validate a scene without rendering.

Defaults are applied before validation; --print writes the resolved scene
back out as TOML. Input datasets are listed and checked for existence but
never read.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultScene
			if len(args) == 1 {
				name = args[0]
			}
			s, err := scene.Resolve(name)
			if err != nil {
				return err
			}
			s.SetDefaults()
			if err := s.Validate(); err != nil {
				return err
			}

			if print {
				data, err := scene.Encode(s)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			printSuccess("Scene %s is valid", s.Name)
			printKeyValue("bbox", s.BBox.String())
			printKeyValue("output", s.Output)
			printKeyValue("figure", fmt.Sprintf("%g×%g in @ %g dpi", s.Figure.Width, s.Figure.Height, s.Figure.DPI))
			printKeyValue("basemap", s.Basemap.Kind)
			for _, p := range s.RequiredPaths(dataDir) {
				if _, err := os.Stat(p); err != nil {
					printWarning("missing %s", p)
				} else {
					printFile(p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&print, "print", false, "print the scene with defaults applied as TOML")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "base directory for relative dataset paths")

	return cmd
}
