package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifelens/internal/api"
	"lifelens/internal/bootstrap"
	"lifelens/internal/config"
	"lifelens/internal/diagnosis"
	"lifelens/internal/services"
	"lifelens/internal/session"
)

type analyzeOptions struct {
	describe string
	listen   bool
	profile  diagnosis.HealthProfile
	activity   string
	json       bool
	speakSteps bool
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Diagnose a repair problem or estimate a meal's nutrition",
		Long: "Classifies the photo, then asks the diagnosis model for a repair plan or a\n" +
			"nutrition estimate. Meals require --height and --weight.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			opts.profile.ActivityLevel = diagnosis.ActivityLevel(opts.activity)

			return ctx.withSession(cmd, bootstrap.Options{}, func(runCtx context.Context, c *bootstrap.Components) error {
				snap, runErr := runAnalysis(runCtx, c.Machine, data, opts)
				if runErr != nil && (!opts.json || snap.Phase != session.PhaseError) {
					return runErr
				}
				if opts.json {
					state, err := api.FromSnapshot(snap)
					if err != nil {
						return err
					}
					if err := writeJSON(cmd, state); err != nil {
						return err
					}
					return runErr
				}
				renderDiagnosis(cmd.OutOrStdout(), snap)
				if opts.speakSteps {
					return speakSteps(runCtx, cmd.OutOrStdout(), c.Machine)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.describe, "describe", "d", "", "Describe the problem or meal")
	cmd.Flags().BoolVar(&opts.listen, "listen", false, "Dictate the description with the configured listen command")
	cmd.Flags().StringVar(&opts.profile.HeightCm, "height", "", "Height in centimetres (meals)")
	cmd.Flags().StringVar(&opts.profile.WeightKg, "weight", "", "Weight in kilograms (meals)")
	cmd.Flags().StringVar(&opts.profile.Age, "age", "", "Age in years (meals)")
	cmd.Flags().StringVar(&opts.profile.Sex, "sex", "", "Sex (meals)")
	cmd.Flags().StringVar(&opts.activity, "activity", string(diagnosis.ActivityModerate), "Activity level: Sedentary, Light, Moderate or Active")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the session state as JSON")
	cmd.Flags().BoolVar(&opts.speakSteps, "speak-steps", false, "Read the repair steps aloud one after another")
	return cmd
}

// runAnalysis walks the machine through classify, input and submit. A
// failed analysis still returns the error-phase snapshot alongside the error.
func runAnalysis(ctx context.Context, m *session.Machine, data []byte, opts analyzeOptions) (session.Snapshot, error) {
	if err := m.SelectImage(ctx, data); err != nil {
		return session.Snapshot{}, userFacing(err)
	}
	if strings.TrimSpace(opts.describe) != "" {
		if err := m.SetDescription(opts.describe); err != nil {
			return session.Snapshot{}, userFacing(err)
		}
	}
	if opts.listen {
		if err := m.Listen(ctx); err != nil {
			return session.Snapshot{}, userFacing(err)
		}
	}
	if m.Snapshot().Phase == session.PhaseCollectingFoodData {
		if err := m.SetHealthProfile(opts.profile); err != nil {
			return session.Snapshot{}, userFacing(err)
		}
	}

	err := m.Submit(ctx)
	snap := m.Snapshot()
	if err != nil {
		if errors.Is(err, session.ErrAnalysisFailed) {
			return snap, errors.New(snap.ErrorMessage)
		}
		return snap, userFacing(err)
	}
	return snap, nil
}

// speakSteps reads each repair step aloud, waiting for one to finish before
// starting the next. Results without guidance are left alone.
func speakSteps(ctx context.Context, out io.Writer, m *session.Machine) error {
	repair, ok := m.Snapshot().Diagnosis.(*diagnosis.Repair)
	if !ok || !repair.GuidanceAllowed() || len(repair.Steps) == 0 {
		return nil
	}
	defer func() { _ = m.PauseStep() }()
	for i := range repair.Steps {
		done, err := m.SpeakStep(i)
		if err != nil {
			return userFacing(err)
		}
		fmt.Fprintf(out, "Reading step %d of %d\n", i+1, len(repair.Steps))
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// userFacing replaces validation errors with their message.
func userFacing(err error) error {
	if errors.Is(err, services.ErrValidation) {
		return errors.New(services.UserMessage(err))
	}
	return err
}
