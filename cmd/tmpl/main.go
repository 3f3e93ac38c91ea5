package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tmpl/pkg/config"
	"tmpl/pkg/history"
	"tmpl/pkg/interp"
	"tmpl/pkg/template"
	"tmpl/pkg/ui"
)

var (
	cfgFile   string
	verbose   bool
	noSpinner bool

	cfg    *config.Config
	logger = logrus.New()
)

var errNoTemplateName = errors.New("no template name provided. Use `tmpl <name>` or `tmpl install <name>`")

var rootCmd = &cobra.Command{
	Use:   "tmpl [name]",
	Short: "A template processing tool",
	Long: `Scaffold projects from installed templates.

A template is a line-oriented script of directives that create directories
and files, write file contents, run commands and prompt for variables.

Examples:
  tmpl install react
  tmpl react --var name=demo`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errNoTemplateName
		}
		return runCommand(cmd.Context(), args[0])
	},
}

func setup() error {
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		ForceColors:      ui.ShouldUseColor(os.Stderr),
	})
	logger.SetLevel(cfg.Level())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func newStore() *template.Store {
	store := template.NewStore(cfg.TemplatesDir(), cfg.RegistryURL)
	store.Progress = newProgress()
	store.Out = os.Stdout
	return store
}

// newProgress returns nil when the spinner is disabled so callers fall
// back to their silent default.
func newProgress() interp.Progress {
	if noSpinner || !cfg.SpinnerEnabled() {
		return nil
	}
	return ui.NewSpinner(os.Stdout)
}

// openRecorder never fails; an unusable database only disables history.
func openRecorder() history.Recorder {
	if !cfg.HistoryEnabled() {
		return history.Nop{}
	}
	db, err := history.NewHistoryDB(cfg.History.Path)
	if err != nil {
		logger.WithError(err).Debug("history unavailable")
		return history.Nop{}
	}
	return db
}

func record(e history.Event) {
	r := openRecorder()
	defer r.Close()
	if err := r.Record(e); err != nil {
		logger.WithError(err).Debug("failed to record history")
	}
}

func check(text string) string {
	return ui.Colorize("√", ui.ColorGreen, ui.ShouldUseColor(os.Stdout)) + " " + text
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/tmpl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every directive")
	rootCmd.PersistentFlags().BoolVar(&noSpinner, "no-spinner", false, "Disable progress spinners")
	rootCmd.Flags().StringSliceVar(&templateVars, "var", []string{}, "Template variables (key=value)")

	installCmd.Flags().StringVar(&installName, "name", "", "Name for a template installed from a git repository or directory")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of events to show")
	statsCmd.Flags().Int("days", 7, "Number of days to include")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
