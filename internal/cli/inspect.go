package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/txwater/studymap/pkg/geo"
	sio "github.com/txwater/studymap/pkg/io"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe a vector dataset",
		Long:  `Print the CRS, feature count, geometry kinds and bounds of a shapefile or GeoJSON file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := sio.Loader{Logger: c.Logger}.Load(args[0])
			if err != nil {
				return err
			}
			printInspect(args[0], coll)
			return nil
		},
	}
}

func printInspect(path string, c *geo.Collection) {
	fmt.Println(StyleTitle.Render(path))

	crsName := "unknown (assumed WGS84)"
	if c.CRS != nil {
		crsName = c.CRS.String()
	}
	printKeyValue("crs", crsName)
	printKeyValue("features", StyleNumber.Render(fmt.Sprint(c.Len())))
	printKeyValue("kinds", kindSummary(c.Counts()))
	if !c.Empty() {
		printKeyValue("bounds", geo.BBoxFromBound(c.Bound()).String())
	}
}

// kindSummary formats kind counts as "Polygon 12, MultiPolygon 3",
// largest first.
func kindSummary(counts map[geo.Kind]int) string {
	if len(counts) == 0 {
		return "none"
	}
	kinds := make([]geo.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s %d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
