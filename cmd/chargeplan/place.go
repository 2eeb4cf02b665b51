package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chargeplan/chargeplan/internal/config"
	"github.com/chargeplan/chargeplan/internal/pipeline"
	"github.com/chargeplan/chargeplan/internal/placement"
	"github.com/chargeplan/chargeplan/internal/placement/qubo"
	"github.com/chargeplan/chargeplan/internal/placement/scenario"
	"github.com/chargeplan/chargeplan/internal/solver"
)

func newPlaceCmd() *cobra.Command {
	var (
		scenarioPath string
		width        int
		height       int
		poiCount     int
		chargerCount int
		newChargers  int
		seed         int64

		gamma1 float64
		gamma2 float64
		gamma3 float64
		gamma4 float64

		strategyName string
		solverURL    string
		token        string
		numReads     int
		budget       int
		timeout      time.Duration

		outputFmt string
		showMap   bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Solve a placement scenario on the hybrid solver",
		Long: `Builds the QUBO for a scenario, submits it to the solver service, and
prints where the new charging stations should go.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), placeOpts{
				scenarioPath: scenarioPath,
				width:        width,
				height:       height,
				poiCount:     poiCount,
				chargerCount: chargerCount,
				newChargers:  newChargers,
				seed:         seed,
				gamma1:       gamma1,
				gamma2:       gamma2,
				gamma3:       gamma3,
				gamma4:       gamma4,
				strategyName: strategyName,
				solverURL:    solverURL,
				token:        token,
				numReads:     numReads,
				budget:       budget,
				timeout:      timeout,
				outputFmt:    outputFmt,
				showMap:      showMap,
				verbose:      verbose,
			})
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides the grid flags)")
	cmd.Flags().IntVar(&width, "width", 15, "Grid width")
	cmd.Flags().IntVar(&height, "height", 15, "Grid height")
	cmd.Flags().IntVar(&poiCount, "poi", 3, "Points of interest to generate")
	cmd.Flags().IntVar(&chargerCount, "chargers", 4, "Existing charging stations to generate")
	cmd.Flags().IntVar(&newChargers, "new-chargers", 2, "New stations to place")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Grid generation seed (0 draws from the clock)")
	cmd.Flags().Float64Var(&gamma1, "gamma1", 0, "POI attraction weight (0 derives from the candidate count)")
	cmd.Flags().Float64Var(&gamma2, "gamma2", 0, "Station repulsion weight (0 derives from the candidate count)")
	cmd.Flags().Float64Var(&gamma3, "gamma3", 0, "Candidate spread weight (0 derives from the candidate count)")
	cmd.Flags().Float64Var(&gamma4, "gamma4", 0, "Exact-count penalty weight (0 derives from the candidate count)")
	cmd.Flags().StringVar(&strategyName, "strategy", "verify", "Build strategy: iterative, vectorized or verify")
	cmd.Flags().StringVar(&solverURL, "solver-url", "", "Solver endpoint (default: SOLVER_URL)")
	cmd.Flags().StringVar(&token, "token", "", "Solver bearer token (default: SOLVER_TOKEN)")
	cmd.Flags().IntVar(&numReads, "reads", 0, "Reads the solver samples per solve (default: SOLVER_NUM_READS)")
	cmd.Flags().IntVar(&budget, "budget", 0, "Solver measurement budget (default: SOLVER_MEASUREMENT_BUDGET)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Solve timeout (default: SOLVER_TIMEOUT)")
	cmd.Flags().StringVar(&outputFmt, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&showMap, "show-map", false, "Draw the grid with POIs, existing and new stations")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log the build and solve steps")

	return cmd
}

type placeOpts struct {
	scenarioPath string
	width        int
	height       int
	poiCount     int
	chargerCount int
	newChargers  int
	seed         int64

	gamma1 float64
	gamma2 float64
	gamma3 float64
	gamma4 float64

	strategyName string
	solverURL    string
	token        string
	numReads     int
	budget       int
	timeout      time.Duration

	outputFmt string
	showMap   bool
	verbose   bool
}

func runPlace(ctx context.Context, opts placeOpts) error {
	scn, err := resolveScenario(opts.scenarioPath, scenario.GridConfig{
		Width:         opts.width,
		Height:        opts.height,
		POICount:      opts.poiCount,
		ExistingCount: opts.chargerCount,
		NewStations:   opts.newChargers,
	}, opts.seed)
	if err != nil {
		return err
	}

	strategy, err := qubo.ParseStrategy(opts.strategyName)
	if err != nil {
		return err
	}
	weights := resolveWeights(len(scn.Candidates), opts.gamma1, opts.gamma2, opts.gamma3, opts.gamma4)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	url := firstNonEmpty(opts.solverURL, cfg.Solver.URL)
	if url == "" {
		return fmt.Errorf("no solver endpoint: pass --solver-url or set SOLVER_URL")
	}

	var zlog *zap.Logger
	if opts.verbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = zl.Sync() }()
		zlog = zl
	}

	client, err := solver.New(url, firstNonEmpty(opts.token, cfg.Solver.Token),
		solver.WithTimeout(pickDuration(opts.timeout, cfg.Solver.Timeout)),
		solver.WithNumReads(pickInt(opts.numReads, cfg.Solver.NumReads)),
		solver.WithMeasurementBudget(pickInt(opts.budget, cfg.Solver.MeasurementBudget)),
		solver.WithLogger(zlog),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Scenario: %d candidates, %d POIs, %d existing stations\n",
		len(scn.Candidates), len(scn.POIs), len(scn.Existing))
	fmt.Fprintf(os.Stderr, "Submitting QUBO (%d variables) to %s...\n", len(scn.Candidates), url)

	runner := pipeline.NewRunner(qubo.NewBuilder(weights, zlog), client, strategy, zlog)
	outcome, err := runner.Run(ctx, scn)
	if err != nil {
		return err
	}
	if v := outcome.Placement.Violation; v != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", v)
	}

	report := placement.NewReport(scn, outcome.Placement, outcome.Energy, outcome.Runtime)

	switch opts.outputFmt {
	case "json":
		out := struct {
			*pipeline.Outcome
			Report *placement.Report `json:"report"`
		}{outcome, report}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	default:
		fmt.Print(report)
		if opts.showMap {
			fmt.Println()
			fmt.Print(placement.RenderGrid(scn, outcome.Placement))
		}
	}

	return nil
}

// resolveScenario loads the YAML scenario when a path is given, otherwise
// generates one from the grid config.
func resolveScenario(path string, cfg scenario.GridConfig, seed int64) (*placement.Scenario, error) {
	if path != "" {
		return scenario.Load(path)
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	return scenario.Generate(cfg, rng)
}

// resolveWeights fills every unset gamma with its derived default.
func resolveWeights(numCandidates int, g1, g2, g3, g4 float64) placement.Weights {
	w := placement.DefaultWeights(numCandidates)
	if g1 > 0 {
		w.POIAttraction = g1
	}
	if g2 > 0 {
		w.StationRepulsion = g2
	}
	if g3 > 0 {
		w.CandidateSpread = g3
	}
	if g4 > 0 {
		w.CountPenalty = g4
	}
	return w
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickInt(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

func pickDuration(flag, fallback time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return fallback
}
