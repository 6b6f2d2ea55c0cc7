package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifelens/internal/api"
	"lifelens/internal/fileutil"
	"lifelens/internal/records"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the impact dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(runCtx context.Context, store *records.Store) error {
				metrics := store.Metrics(runCtx)
				if asJSON {
					return writeJSON(cmd, api.FromMetrics(metrics))
				}
				renderMetrics(cmd.OutOrStdout(), metrics)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metrics as JSON")
	return cmd
}

type trackerOutput struct {
	Today api.TodayResponse    `json:"today"`
	Meals []records.MealRecord `json:"meals"`
}

func newTrackerCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Show today's intake and the meal history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(runCtx context.Context, store *records.Store) error {
				now := time.Now()
				summary := store.TodaySummary(runCtx, now)
				goal := store.DailyGoal(runCtx)
				meals := store.Meals(runCtx)
				if asJSON {
					return writeJSON(cmd, trackerOutput{
						Today: api.FromSummary(now, summary, goal),
						Meals: meals,
					})
				}
				out := cmd.OutOrStdout()
				renderToday(out, summary, goal)
				renderMeals(out, meals)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tracker as JSON")
	cmd.AddCommand(newTrackerSearchCommand(ctx))
	return cmd
}

func newTrackerSearchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search meal history by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withStore(cmd, func(runCtx context.Context, store *records.Store) error {
				meals, err := store.SearchMeals(runCtx, query)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.MealListResponse{Meals: meals})
				}
				renderMeals(cmd.OutOrStdout(), meals)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matches as JSON")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:       "export meals|metrics",
		Short:     "Export meal history or metrics as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"meals", "metrics"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			var defaultName string
			switch kind {
			case "meals":
				defaultName = records.MealsExportName
			case "metrics":
				defaultName = records.MetricsExportName
			default:
				return fmt.Errorf("unknown export %q (expected meals or metrics)", args[0])
			}

			return ctx.withStore(cmd, func(runCtx context.Context, store *records.Store) error {
				export := store.ExportMeals
				if kind == "metrics" {
					export = store.ExportMetrics
				}

				target := strings.TrimSpace(outputPath)
				if target == "-" {
					return export(runCtx, cmd.OutOrStdout())
				}
				if target == "" {
					target = defaultName
				}
				if info, err := os.Stat(target); err == nil && info.IsDir() {
					target = filepath.Join(target, defaultName)
				}
				err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
					return export(runCtx, w)
				})
				if err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", kind, target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file, or - for stdout")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear meal history and the daily goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(runCtx context.Context, store *records.Store) error {
				var errs []error
				errs = append(errs, store.ClearHistory(runCtx))
				if metrics {
					errs = append(errs, store.ResetMetrics(runCtx))
				}
				if err := errors.Join(errs...); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Meal history cleared")
				if metrics {
					fmt.Fprintln(out, "Metrics reset")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Also reset dashboard metrics")
	return cmd
}
