// Package main provides the quiz binary: a terminal-based run of the
// assessment against the embedded question bank and taxonomy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathlight-labs/pathlight/internal/report"
)

const (
	Version = "0.1.0"
	appName = "quiz"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Run a career assessment in the terminal",
		Long: `Quiz runs an interactive career assessment: aptitude and personality
questions feed a nine-dimension trait profile, which is classified against
career clusters (or drilled down field -> subfield -> specialization with
--staged).

By default the session is adaptive: each question targets the trait the
engine currently knows least about.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.full && opts.staged {
				return fmt.Errorf("--full and --staged are mutually exclusive")
			}
			opts.mode = report.ModeAdaptive
			switch {
			case opts.full:
				opts.mode = report.ModeFull
			case opts.staged:
				opts.mode = report.ModeStaged
			case opts.demo:
				opts.mode = report.ModeDemo
			}
			return run(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.full, "full", false, "Ask every question in the bank, in order")
	cmd.Flags().BoolVar(&opts.staged, "staged", false, "Drill down field -> subfield -> specialization")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Answer automatically with seeded random responses")
	cmd.Flags().BoolVar(&opts.noAI, "no-ai", false, "Skip the language-model narrative and use the built-in summary")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed for --demo (0 = time-based)")
	cmd.Flags().IntVar(&opts.budget, "budget", 0, "Question budget for adaptive mode (0 = configured default)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory for results and data overrides (default from DATA_DIR)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not persist the result")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}
