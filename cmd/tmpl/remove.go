package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmpl/pkg/history"
	"tmpl/pkg/template"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an installed template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeTemplate(newStore(), args[0])
	},
}

func removeTemplate(store *template.Store, name string) error {
	err := store.Remove(name)

	event := history.Event{Kind: history.KindRemove, Template: name, Success: err == nil}
	if err != nil {
		event.Error = err.Error()
	}
	record(event)

	if err != nil {
		return err
	}
	fmt.Println(check(fmt.Sprintf("Template '%s' removed", name)))
	return nil
}
