// Package main provides the tinker CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tinker/internal/engine"
	"tinker/internal/history"
	"tinker/internal/logging"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	projectDir string
	modelName  string
	cmdTimeout time.Duration
	historyMax int
)

var rootCmd = &cobra.Command{
	Use:   "tinker",
	Short: "tinker - a conversational coding agent for your project directory",
	Long: `tinker is a coding agent that works in small, visible steps.

Each step the model decides on exactly one operation (read, write, delete,
list, mkdir, run a command, or scan the project), tinker executes it inside
the project directory, and the outcome is fed back to the model until it
declares the task complete.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Execute a single task and exit",
	Long: `Runs one task through the step loop and exits with a non-zero status
if the task did not complete.

Example:
  tinker run "add a Makefile with build and test targets"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		task := strings.Join(args, " ")
		outcome, err := app.Session.RunTask(cmd.Context(), task)
		if err != nil {
			return err
		}

		fmt.Println(app.Narrator.Summary(outcome))
		// CappedOut is incomplete work, not an error; only Failed is fatal.
		if outcome.Status == engine.StatusFailed {
			return fmt.Errorf("task failed after %d steps", outcome.Steps)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration for this project",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		key := "not set"
		if cfg.LLM.APIKey != "" {
			key = "configured"
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "project root:\t%s\n", root)
		fmt.Fprintf(w, "model:\t%s\n", cfg.LLM.Model)
		fmt.Fprintf(w, "api key:\t%s\n", key)
		fmt.Fprintf(w, "max iterations:\t%d\n", cfg.Engine.MaxIterations)
		fmt.Fprintf(w, "command timeout:\t%s\n", cfg.Execution.CommandTimeoutDuration())
		fmt.Fprintf(w, "keep conversation:\t%v\n", cfg.Engine.KeepConversation)
		fmt.Fprintf(w, "history:\t%v (%s)\n", cfg.History.Enabled, cfg.History.Path)
		return w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently executed tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			fmt.Println("history is disabled for this project")
			return nil
		}

		store, err := history.Open(historyPath(root, cfg))
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(historyMax)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no tasks recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSTATUS\tSTEPS\tTASK")
		for _, e := range entries {
			task := e.Task
			if len(task) > 60 {
				task = task[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				e.FinishedAt.Local().Format("2006-01-02 15:04"), e.Status, e.Steps, task)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "model name (overrides configuration)")
	rootCmd.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 0, "shell command timeout (overrides configuration)")
	historyCmd.Flags().IntVarP(&historyMax, "limit", "n", 20, "number of entries to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tinker: %v\n", err)
		os.Exit(1)
	}
}
