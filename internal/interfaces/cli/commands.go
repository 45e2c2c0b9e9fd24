package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// runFunc computes a command's result.
type runFunc func(ctx context.Context, cliCtx *CLIContext) (interface{}, error)

// run executes fn under the global timeout and prints its result.
func run(cmd *cobra.Command, fn runFunc) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()

	out, err := fn(ctx, cliCtx)
	if err != nil {
		return err
	}
	return PrintResult(cmd, cliCtx.OutputFormat, out)
}

// patientCommand builds a command analysing the patient given by flags.
func patientCommand(use, short string, analyse func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error)) *cobra.Command {
	var p *patientFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := p.vector(cmd)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, cliCtx *CLIContext) (interface{}, error) {
				return analyse(ctx, cliCtx, v, p.variantID())
			})
		},
	}
	p = addPatientFlags(cmd)
	return cmd
}

func newRiskCmd() *cobra.Command {
	return patientCommand("risk", "Estimate the hypocalcemia probability",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			est, err := cliCtx.Service.GetRiskEstimate(ctx, v, variant)
			if err != nil {
				return nil, err
			}
			return riskView{est}, nil
		})
}

func newContributionsCmd() *cobra.Command {
	return patientCommand("contributions", "Show per-feature contributions to the risk",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			set, err := cliCtx.Service.GetContributions(ctx, v, variant)
			if err != nil {
				return nil, err
			}
			return contributionsView{Ranked: set.Ranked(), Total: set.Total()}, nil
		})
}

func newInsightsCmd() *cobra.Command {
	return patientCommand("insights", "Summarize the estimate in plain language",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			insights, err := cliCtx.Service.GetInsights(ctx, v, variant)
			if err != nil {
				return nil, err
			}
			return insightsView(insights), nil
		})
}

func newCounterfactualCmd() *cobra.Command {
	var target float64
	cmd := patientCommand("counterfactual", "Find the smallest feature change reaching a target risk",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			plan, err := cliCtx.Service.GetCounterfactualPlan(ctx, v, target, variant)
			if err != nil {
				return nil, err
			}
			return planView{plan}, nil
		})
	cmd.Flags().Float64Var(&target, "target", 0, "target probability in (0, 1) (default: configured target)")
	return cmd
}

func newSensitivityCmd() *cobra.Command {
	var rangeFraction float64
	cmd := patientCommand("sensitivity", "Rank features by how much the risk moves when each is varied",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			report, err := cliCtx.Service.GetSensitivityReport(ctx, v, variant, rangeFraction)
			if err != nil {
				return nil, err
			}
			return sensitivityView{report}, nil
		})
	cmd.Flags().Float64Var(&rangeFraction, "range", 0, "perturbation as a fraction in (0, 1] (default: configured range)")
	return cmd
}

func newStabilityCmd() *cobra.Command {
	var (
		samples int
		seed    int64
		cmd     *cobra.Command
	)
	cmd = patientCommand("stability", "Measure contribution stability under random perturbation",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			report, err := stabilityReport(ctx, cliCtx.Service, v, variant, samples, flagInt64(cmd, "seed", seed))
			if err != nil {
				return nil, err
			}
			return stabilityView{report}, nil
		})
	cmd.Flags().IntVar(&samples, "samples", 0, "number of perturbed samples (default: configured count)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: configured seed)")
	return cmd
}

func newTrajectoryCmd() *cobra.Command {
	var (
		days int
		cmd  *cobra.Command
	)
	cmd = patientCommand("trajectory", "Project the risk over the post-operative recovery days",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			tr, err := trajectory(ctx, cliCtx.Service, v, variant, flagInt(cmd, "days", days))
			if err != nil {
				return nil, err
			}
			return trajectoryView{tr}, nil
		})
	cmd.Flags().IntVar(&days, "days", 0, "horizon in days (default: configured horizon)")
	return cmd
}

// flagInt64 returns a pointer to v when the flag was set, nil otherwise.
func flagInt64(cmd *cobra.Command, name string, v int64) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func flagInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// optionalParams is implemented by services that resolve unset analysis
// parameters themselves. A nil pointer selects the serving side's default.
type optionalParams interface {
	stability(ctx context.Context, v clinical.Vector, variant clinical.Variant, samples int, seed *int64) (*shap.StabilityReport, error)
	trajectory(ctx context.Context, v clinical.Vector, variant clinical.Variant, days *int) (*shap.Trajectory, error)
}

func stabilityReport(ctx context.Context, svc explain.Service, v clinical.Vector, variant clinical.Variant, samples int, seed *int64) (*shap.StabilityReport, error) {
	if o, ok := svc.(optionalParams); ok {
		return o.stability(ctx, v, variant, samples, seed)
	}
	s := svc.Settings().StabilitySeed
	if seed != nil {
		s = *seed
	}
	return svc.GetStabilityReport(ctx, v, variant, samples, s)
}

func trajectory(ctx context.Context, svc explain.Service, v clinical.Vector, variant clinical.Variant, days *int) (*shap.Trajectory, error) {
	if o, ok := svc.(optionalParams); ok {
		return o.trajectory(ctx, v, variant, days)
	}
	d := svc.Settings().TrajectoryDays
	if days != nil {
		d = *days
	}
	return svc.GetTrajectory(ctx, v, variant, d)
}

func newExplainCmd() *cobra.Command {
	return patientCommand("explain", "Run every analysis and print the full explanation",
		func(ctx context.Context, cliCtx *CLIContext, v clinical.Vector, variant clinical.Variant) (interface{}, error) {
			out, err := cliCtx.Service.Explain(ctx, v, variant)
			if err != nil {
				return nil, err
			}
			return explanationView{out}, nil
		})
}

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features [id]",
		Short: "List the feature catalog or show one feature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cliCtx *CLIContext) (interface{}, error) {
				if len(args) == 1 {
					id, err := clinical.Standard().Normalize(args[0])
					if err != nil {
						return nil, err
					}
					spec, err := cliCtx.Service.GetFeatureSpec(ctx, id)
					if err != nil {
						return nil, err
					}
					return featuresView{spec}, nil
				}
				specs, err := cliCtx.Service.ListFeatureSpecs(ctx)
				if err != nil {
					return nil, err
				}
				return featuresView(specs), nil
			})
		},
	}
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model [variant]",
		Short: "Show the model card of a variant",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var variant clinical.Variant
			if len(args) == 1 {
				variant = clinical.Variant(args[0])
			}
			return run(cmd, func(ctx context.Context, cliCtx *CLIContext) (interface{}, error) {
				card, err := cliCtx.Service.GetModelCard(ctx, variant)
				if err != nil {
					return nil, err
				}
				return modelView{card}, nil
			})
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the preset patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, cliCtx *CLIContext) (interface{}, error) {
				out := make(presetsView, 0, len(clinical.PresetNames()))
				for _, name := range clinical.PresetNames() {
					v, err := clinical.Preset(name)
					if err != nil {
						return nil, err
					}
					out = append(out, presetEntry{Name: name, Values: v})
				}
				return out, nil
			})
		},
	}
}

//Personal.AI order the ending
