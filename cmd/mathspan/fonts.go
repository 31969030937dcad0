package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/mathspan/fonts"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List the bundled font catalog",
	RunE:  runFonts,
}

func runFonts(cmd *cobra.Command, args []string) error {
	book := fonts.Default()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Family\tStyle\tWeight\tGlyphs\tName\n")
	fmt.Fprintf(w, "------\t-----\t------\t------\t----\n")
	for _, f := range book.Fonts() {
		info := f.Info()
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			info.Family, info.Variant.Style, info.Variant.Weight, f.NumGlyphs(), f.Name())
	}
	return nil
}
