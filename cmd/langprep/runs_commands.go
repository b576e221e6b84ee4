package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"langprep/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the history of pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsStatusCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			filter := make([]ledger.Status, 0, len(statuses))
			for _, raw := range statuses {
				status, ok := ledger.ParseStatus(strings.ToLower(strings.TrimSpace(raw)))
				if !ok {
					return fmt.Errorf("unknown status %q (expected running, completed, or failed)", raw)
				}
				filter = append(filter, status)
			}

			return ctx.withLedger(func(store *ledger.Store) error {
				runs, err := store.List(cmd.Context(), limit, filter...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Started", "Input", "Train", "Val", "Test"},
					buildRunListRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run; a unique id prefix is enough",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			return ctx.withLedger(func(store *ledger.Store) error {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatRunDetails(run))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count runs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			return ctx.withLedger(func(store *ledger.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				var rows [][]string
				for _, status := range []ledger.Status{ledger.StatusRunning, ledger.StatusCompleted, ledger.StatusFailed} {
					if count, ok := stats[status]; ok {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func buildRunListRows(runs []*ledger.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.InputPath,
			strconv.Itoa(run.Counts.Train),
			strconv.Itoa(run.Counts.Val),
			strconv.Itoa(run.Counts.Test),
		})
	}
	return rows
}

func formatRunDetails(run *ledger.Run) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", label+":", value)
	}
	line("ID", run.ID)
	line("Status", string(run.Status))
	line("Input", run.InputPath)
	if run.InputSHA256 != "" {
		line("Input SHA-256", run.InputSHA256)
	}
	line("Columns", fmt.Sprintf("text=%s label=%s", run.TextColumn, run.LabelColumn))
	line("Fractions", fmt.Sprintf("test=%g val=%g (%s)", run.TestFraction, run.ValFraction, run.ValBasis))
	line("Seed", strconv.FormatInt(run.Seed, 10))
	line("Stratified", yesNo(run.Stratified))
	line("Output", run.OutputDir)
	line("Rows", fmt.Sprintf("loaded=%d cleaned=%d train=%d val=%d test=%d",
		run.Counts.Loaded, run.Counts.Cleaned, run.Counts.Train, run.Counts.Val, run.Counts.Test))
	line("Started", run.StartedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		line("Finished", run.FinishedAt.Local().Format(time.RFC3339))
		line("Duration", run.Duration().Round(time.Millisecond).String())
	}
	if run.ErrorMessage != "" {
		line("Error", run.ErrorMessage)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
