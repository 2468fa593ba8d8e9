/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: costs.go
Description: Prints the API cost table, most expensive first.
*/

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kleascm/orka/pkg/costs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ListCosts prints the top N entries of the cost table, or all of them when N is 0.
func ListCosts(cmd *cobra.Command, args []string) error {
	paths, err := LoadConfig()
	if err != nil {
		return err
	}
	table, err := costs.Load(paths.CostsFile)
	if err != nil {
		return err
	}
	writeCosts(cmd.OutOrStdout(), table, viper.GetInt("top"))
	return nil
}

func writeCosts(w io.Writer, table costs.Table, top int) {
	entries := table.Sorted()
	if top > 0 && top < len(entries) {
		entries = entries[:top]
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "API\tCOST")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%g\n", e.API, e.Cost)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d of %d APIs\n", len(entries), len(table))
}
