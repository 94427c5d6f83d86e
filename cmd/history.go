// =============================================================================
// Picking List Generator - History Command
// =============================================================================
//
// COMMAND USAGE:
//   picker history list [--limit N]
//   picker history show <run-id> [--xlsx file.xlsx]
//   picker history prune --older-than 720h
//
// Runs are recorded by 'pick' when history.enabled is set. 'show' can
// rewrite a recorded list as a workbook for reprinting.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/picking-list/internal/store"
	"github.com/ginjaninja78/picking-list/internal/types"
	"github.com/ginjaninja78/picking-list/internal/xlsxwriter"
	"github.com/ginjaninja78/picking-list/pkg/utils"
)

var (
	historyLimit     int
	historyReprint   string
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, reprint and prune recorded runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			runs, err := s.ListRuns(ctx, historyLimit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tLOADED AT\tSOURCE\tSHIPPING\tENTRIES\tTOTAL\tEXCLUDED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
					r.RunID, r.LoadedAt.Local().Format("2006-01-02 15:04:05"), r.SourceFile,
					r.ShippingMethod, r.EntryCount, r.Total, r.ExcludedCount)
			}
			return w.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded picking list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			run, records, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}

			list := &types.PickingList{
				RunID:          run.RunID,
				SourceFile:     run.SourceFile,
				ShippingMethod: run.ShippingMethod,
				LoadedAt:       run.LoadedAt.Local(),
				Total:          run.Total,
				ExcludedCount:  run.ExcludedCount,
				EligibleCount:  run.EligibleCount,
				SkippedCount:   run.SkippedCount,
			}
			for _, rec := range records {
				list.Entries = append(list.Entries, rec.Entry())
			}
			printList(list)

			if historyReprint == "" {
				return nil
			}
			mainConfig, err := loadConfig()
			if err != nil {
				return err
			}
			if err := xlsxwriter.WritePickingList(historyReprint, xlsxwriter.Workbook{
				List:    list,
				Display: mainConfig.JANDisplay(),
			}); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", historyReprint)
			return nil
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs and archived exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		cutoff := time.Now().Add(-historyOlderThan)

		return withHistory(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			n, err := s.DeleteBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d run(s) loaded before %s\n", n, cutoff.Format("2006-01-02 15:04"))

			mainConfig, err := loadConfig()
			if err != nil {
				return err
			}
			if !utils.FileExists(mainConfig.InputArchiveDir) {
				return nil
			}
			removed, err := utils.CleanOldArchives(mainConfig.InputArchiveDir, cutoff)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d archived export(s)\n", removed)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	historyShowCmd.Flags().StringVar(&historyReprint, "xlsx", "", "Also write the list to this workbook")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Age of the runs to delete")
}

// withHistory opens the history database for fn.
func withHistory(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(ctx, mainConfig.History.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}
