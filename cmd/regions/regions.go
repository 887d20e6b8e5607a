// Package regions implements the command that lists the region codes with a
// display name.
package regions

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/regions"
)

// Command creates a new cobra.Command to print the known regions.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List region codes with a display name",
		Long:  "Prints the eBird region codes the dashboard shows by name. Other codes are accepted and shown as is.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Print(cmd.OutOrStdout())
		},
	}

	return cmd
}

// Print writes one "CODE  Name" line per known region.
func Print(w io.Writer) error {
	for _, code := range regions.Codes() {
		if _, err := fmt.Fprintf(w, "%-8s %s\n", code, regions.Name(code)); err != nil {
			return err
		}
	}
	return nil
}
