package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tmpl/pkg/template"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTemplates(os.Stdout, newStore())
	},
}

func listTemplates(out io.Writer, store *template.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "No templates installed.")
		return nil
	}

	fmt.Fprintln(out, "Installed templates:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tSIZE\tINSTALLED")
	for _, info := range infos {
		fmt.Fprintf(w, "  %s\t%d B\t%s\n", info.Name, info.Size, info.InstalledAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
