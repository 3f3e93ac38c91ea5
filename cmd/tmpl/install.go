package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tmpl/pkg/history"
	"tmpl/pkg/template"
	"tmpl/pkg/ui"
)

var installName string

var installCmd = &cobra.Command{
	Use:   "install <name|.|git-url|dir>",
	Short: "Install a template",
	Long: `Install a template from the registry, the current directory, a git
repository or a local directory.

Examples:
  tmpl install react                                   # from the registry
  tmpl install .                                       # a .tmpl file in this directory
  tmpl install https://github.com/acme/starter.git     # file.tmpl at the repository root
  tmpl install ../starter --name starter`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return installTemplate(cmd.Context(), newStore(), args[0])
	},
}

func installTemplate(ctx context.Context, store *template.Store, arg string) error {
	start := time.Now()
	name := strings.TrimSpace(arg)

	var err error
	switch {
	case name == ".":
		var dir string
		dir, err = os.Getwd()
		if err == nil {
			name, err = store.InstallLocal(dir, ui.NewPrompt(os.Stdin, os.Stdout))
		}
	case template.IsSource(name):
		var installed string
		installed, err = store.InstallSource(ctx, name, installName)
		if err == nil {
			name = installed
		}
	default:
		_, err = store.Install(ctx, name)
	}

	event := history.Event{
		Kind:     history.KindInstall,
		Template: name,
		Duration: time.Since(start),
		Success:  err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	record(event)

	if err != nil {
		return err
	}
	fmt.Println(check(fmt.Sprintf("Template '%s' installed", name)))
	return nil
}
