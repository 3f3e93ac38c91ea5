package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"tmpl/pkg/history"
	"tmpl/pkg/interp"
	"tmpl/pkg/template"
	"tmpl/pkg/ui"
)

var templateVars []string

// parseVars turns key=value pairs into the variables a run starts with.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid variable %q: expected key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func runCommand(ctx context.Context, name string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return runTemplate(ctx, newStore(), name, dir)
}

func runTemplate(ctx context.Context, loader template.Loader, name, dir string) error {
	vars, err := parseVars(templateVars)
	if err != nil {
		return err
	}

	text, err := loader.Load(name)
	if err != nil {
		return err
	}

	start := time.Now()
	in := interp.New(interp.Parse(text), interp.Options{
		Prompter: ui.NewPrompt(os.Stdin, os.Stdout),
		Progress: newProgress(),
		Logger:   logger,
		Vars:     vars,
	})
	rep, err := in.Run(ctx, dir)

	event := history.Event{
		Kind:     history.KindRun,
		Template: name,
		Duration: time.Since(start),
		Success:  err == nil && rep.OK(),
	}
	if rep != nil {
		event.Directives = rep.Executed
		event.Diagnostics = len(rep.Diagnostics)
	}
	if err != nil {
		event.Error = err.Error()
	}
	record(event)

	if err != nil {
		return fmt.Errorf("template '%s': %w", name, err)
	}
	fmt.Println(summarize(name, rep))
	return nil
}

func summarize(name string, rep *interp.Report) string {
	if rep.OK() {
		return check(fmt.Sprintf("Template '%s' applied (%d directives)", name, rep.Executed))
	}
	return ui.Colorize("!", ui.ColorRed, ui.ShouldUseColor(os.Stdout)) +
		fmt.Sprintf(" Template '%s' applied with %d problem(s) (%d directives); rerun with --verbose for details",
			name, len(rep.Diagnostics), rep.Executed)
}
