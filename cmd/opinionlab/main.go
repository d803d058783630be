package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/opinionlab/internal/analysis"
	"github.com/san-kum/opinionlab/internal/config"
	"github.com/san-kum/opinionlab/internal/experiment"
	"github.com/san-kum/opinionlab/internal/ising"
	"github.com/san-kum/opinionlab/internal/meanfield"
	"github.com/san-kum/opinionlab/internal/opinion"
	"github.com/san-kum/opinionlab/internal/storage"
	"github.com/san-kum/opinionlab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	steps       int
	seed        int64
	replicas    int
	recordEvery int
	// Social-learning parameters
	agents   int
	informed float64
	accuracy float64
	poll     int
	// Random-field parameters
	rfimAgents int
	coupling   float64
	field      float64
	scale      float64
	maxSweeps  int
	// Fixed-point solver
	iterations int
	// Sweep ranges
	zMin, zMax       float64
	zSteps           int
	analyticAccuracy float64
	analyticPoll     int
	// Hysteresis / avalanche
	fieldMin, fieldMax float64
	rampSteps          int
	fieldStep          float64
	trials             int
	binWidth           int
	// Config file and preset
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opinionlab",
		Short: "agent-based opinion dynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".opinionlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent replicas to average")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "record observables every n steps")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	fixedCmd := &cobra.Command{
		Use:   "fixedpoints",
		Short: "mean-field fixed points of the follower dynamics",
		RunE:  solveFixedPoints,
	}
	fixedCmd.Flags().Float64Var(&informed, "informed", config.DefaultInformed, "informed fraction z")
	fixedCmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "informed accuracy p")
	fixedCmd.Flags().IntVar(&poll, "poll", config.DefaultPoll, "poll size m")
	fixedCmd.Flags().IntVar(&iterations, "iterations", meanfield.DefaultIterations, "boundary iterations")
	fixedCmd.Flags().Float64Var(&zMin, "z-min", 0.05, "lowest informed fraction (with --z-steps)")
	fixedCmd.Flags().Float64Var(&zMax, "z-max", 0.95, "highest informed fraction (with --z-steps)")
	fixedCmd.Flags().IntVar(&zSteps, "z-steps", 0, "solve across a range of informed fractions")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the informed fraction, simulation vs mean field",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&agents, "agents", config.DefaultAgents, "population size")
	sweepCmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "informed accuracy p")
	sweepCmd.Flags().IntVar(&poll, "poll", config.DefaultPoll, "poll size m")
	sweepCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per point")
	sweepCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	sweepCmd.Flags().Float64Var(&zMin, "z-min", 0.05, "lowest informed fraction")
	sweepCmd.Flags().Float64Var(&zMax, "z-max", 0.95, "highest informed fraction")
	sweepCmd.Flags().IntVar(&zSteps, "z-steps", 10, "number of sweep points")
	sweepCmd.Flags().Float64Var(&analyticAccuracy, "analytic-accuracy", 0, "mean-field overlay accuracy (defaults to --accuracy)")
	sweepCmd.Flags().IntVar(&analyticPoll, "analytic-poll", 0, "mean-field overlay poll size (defaults to --poll)")

	hystCmd := &cobra.Command{
		Use:   "hysteresis",
		Short: "field ramp hysteresis loop",
		RunE:  runHysteresis,
	}
	hystCmd.Flags().IntVar(&rfimAgents, "agents", config.DefaultRFIMAgents, "population size")
	hystCmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "conformity coupling j")
	hystCmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "bias disorder scale")
	hystCmd.Flags().Float64Var(&fieldMin, "field-min", -4.0, "lowest external field")
	hystCmd.Flags().Float64Var(&fieldMax, "field-max", 4.0, "highest external field")
	hystCmd.Flags().IntVar(&rampSteps, "ramp-steps", 40, "field values per ramp direction")
	hystCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	avalancheCmd := &cobra.Command{
		Use:   "avalanche",
		Short: "avalanche sizes under small field increments",
		RunE:  runAvalanche,
	}
	avalancheCmd.Flags().IntVar(&rfimAgents, "agents", config.DefaultRFIMAgents, "population size")
	avalancheCmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "conformity coupling j")
	avalancheCmd.Flags().Float64Var(&field, "field", -3.0, "starting external field")
	avalancheCmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "bias disorder scale")
	avalancheCmd.Flags().Float64Var(&fieldStep, "df", 0.2, "field increment per trial")
	avalancheCmd.Flags().IntVar(&trials, "trials", 30, "number of increments")
	avalancheCmd.Flags().IntVar(&binWidth, "bin", 5, "histogram bin width")
	avalancheCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run traces",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range experiment.NewRegistry().ListModels() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, fixedCmd, sweepCmd, hystCmd, avalancheCmd,
		listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, liveCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addModelFlags registers the flags shared by run and live.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "simulation steps")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&agents, "agents", config.DefaultAgents, "population size (social)")
	cmd.Flags().Float64Var(&informed, "informed", config.DefaultInformed, "informed fraction (social)")
	cmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "informed accuracy (social)")
	cmd.Flags().IntVar(&poll, "poll", config.DefaultPoll, "poll size (social)")
	cmd.Flags().IntVar(&rfimAgents, "rfim-agents", config.DefaultRFIMAgents, "population size (rfim)")
	cmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "conformity coupling (rfim)")
	cmd.Flags().Float64Var(&field, "field", 0.0, "external field (rfim)")
	cmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "bias disorder scale (rfim)")
	cmd.Flags().IntVar(&maxSweeps, "max-sweeps", config.DefaultRFIMMaxSweep, "relaxation sweep cap (rfim)")
}

// resolveConfig merges preset, config file, and flags for one model.
// Precedence, lowest to highest: defaults, preset, config file, flags
// the user actually set.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg.Steps = p.Steps
		switch model {
		case "rfim":
			cfg.RFIM = p.RFIM
			if cfg.RFIM.MaxSweeps == 0 {
				cfg.RFIM.MaxSweeps = config.DefaultRFIMMaxSweep
			}
		default:
			cfg.Social = p.Social
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Model = model
	}

	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("replicas") {
		cfg.Replicas = replicas
	}
	if cmd.Flags().Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("agents") {
		cfg.Social.Agents = agents
	}
	if cmd.Flags().Changed("informed") {
		cfg.Social.Informed = informed
	}
	if cmd.Flags().Changed("accuracy") {
		cfg.Social.Accuracy = accuracy
	}
	if cmd.Flags().Changed("poll") {
		cfg.Social.Poll = poll
	}
	if cmd.Flags().Changed("rfim-agents") {
		cfg.RFIM.Agents = rfimAgents
	}
	if cmd.Flags().Changed("coupling") {
		cfg.RFIM.Coupling = coupling
	}
	if cmd.Flags().Changed("field") {
		cfg.RFIM.Field = field
	}
	if cmd.Flags().Changed("scale") {
		cfg.RFIM.Scale = scale
	}
	if cmd.Flags().Changed("max-sweeps") {
		cfg.RFIM.MaxSweeps = maxSweeps
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := args[0]

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	expCfg := experiment.Config{
		Model:       model,
		Steps:       cfg.Steps,
		Seed:        cfg.Seed,
		RecordEvery: cfg.RecordEvery,
		Replicas:    cfg.Replicas,
		Params:      cfg.ExperimentParams(model),
	}
	exp := experiment.New(expCfg, nil)

	fmt.Printf("running %s simulation...\n", model)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(model, cfg.Seed, cfg.ExperimentParams(model), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Converged {
		fmt.Println("converged: yes")
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func solveFixedPoints(cmd *cobra.Command, args []string) error {
	if zSteps > 1 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Z\tLOWER\tMIDDLE\tUPPER")
		delta := (zMax - zMin) / float64(zSteps-1)
		for i := 0; i < zSteps; i++ {
			z := zMin + float64(i)*delta
			fp, err := meanfield.FindFixedPoints(z, accuracy, poll, iterations)
			switch {
			case err == nil:
				fmt.Fprintf(w, "%.3f\t%.6f\t%.6f\t%.6f\n", z, fp.Lower, fp.Middle, fp.Upper)
			case errors.Is(err, meanfield.ErrNoBracket):
				fmt.Fprintf(w, "%.3f\t%.6f\t-\t%.6f\n", z, fp.Lower, fp.Upper)
			default:
				return err
			}
		}
		return w.Flush()
	}

	fp, err := meanfield.FindFixedPoints(informed, accuracy, poll, iterations)
	if err != nil {
		return err
	}

	fmt.Printf("z=%.3f p=%.3f m=%d\n\n", informed, accuracy, poll)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIXED POINT\tVALUE\tSTABILITY")
	fmt.Fprintf(w, "lower\t%.6f\tstable\n", fp.Lower)
	fmt.Fprintf(w, "middle\t%.6f\tunstable\n", fp.Middle)
	fmt.Fprintf(w, "upper\t%.6f\tstable\n", fp.Upper)
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := analysis.ZSweepConfig{
		Agents:   agents,
		Accuracy: accuracy,
		Poll:     poll,
		Steps:    steps,
		Seed:     seed,
		ZMin:     zMin,
		ZMax:     zMax,
		ZSteps:   zSteps,

		AnalyticAccuracy: analyticAccuracy,
		AnalyticPoll:     analyticPoll,
	}

	fmt.Printf("sweeping z in [%.2f, %.2f] (%d points, %d agents, %d steps each)\n\n",
		zMin, zMax, zSteps, agents, steps)

	rows, err := analysis.ZSweep(context.Background(), cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z\tSIMULATED\tLOWER\tMIDDLE\tUPPER")
	for _, row := range rows {
		middle := "-"
		if row.HasMiddle {
			middle = strconv.FormatFloat(row.Middle, 'f', 4, 64)
		}
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%s\t%.4f\n",
			row.Informed, row.Simulated, row.Lower, middle, row.Upper)
	}
	return w.Flush()
}

func runHysteresis(cmd *cobra.Command, args []string) error {
	fields := analysis.FieldRamp(fieldMin, fieldMax, rampSteps)

	rng := rand.New(rand.NewSource(seed))
	m, err := ising.New(coupling, fields[0], rfimAgents, scale, rng)
	if err != nil {
		return err
	}

	points, err := analysis.HysteresisLoop(m, fields)
	if err != nil {
		return err
	}

	fmt.Printf("hysteresis loop: %d agents, j=%.2f, scale=%.2f\n\n", rfimAgents, coupling, scale)
	fmt.Println(analysis.LoopToASCII(points, 70, 20))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tMEAN OPINION\tFLIPS\tSWEEPS")
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.4f\t%d\t%d\n", p.Field, p.MeanOpinion, p.Flips, p.Sweeps)
	}
	return w.Flush()
}

func runAvalanche(cmd *cobra.Command, args []string) error {
	rng := rand.New(rand.NewSource(seed))
	m, err := ising.New(coupling, field, rfimAgents, scale, rng)
	if err != nil {
		return err
	}

	sizes, err := analysis.AvalancheSizes(m, fieldStep, trials)
	if err != nil {
		return err
	}

	fmt.Printf("avalanches: %d agents, j=%.2f, field %.2f..%.2f by %.2f\n\n",
		rfimAgents, coupling, field, field+float64(trials)*fieldStep, fieldStep)

	data := make([]float64, len(sizes))
	for i, s := range sizes {
		data[i] = float64(s)
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("flips per field increment"),
	)
	fmt.Println(graph)
	fmt.Println()

	hist := analysis.SizeHistogram(sizes, binWidth)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE BIN\tCOUNT")
	for i, count := range hist {
		fmt.Fprintf(w, "%d-%d\t%d\n", i*binWidth, (i+1)*binWidth-1, count)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tCONVERGED\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Converged,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	names, _, traces, err := st.LoadTraces(runID)
	if err != nil {
		return err
	}

	if len(traces) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(traces))

	for col, name := range names {
		data := make([]float64, len(traces))
		for i := range traces {
			if col < len(traces[i]) {
				data[i] = traces[i][col]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	names, ticks, traces, err := st.LoadTraces(runID)
	if err != nil {
		return err
	}

	if len(traces) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"step"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range traces {
		row := []string{strconv.Itoa(ticks[i])}
		for _, val := range traces[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	names, ticks, traces, err := st.LoadTraces(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(meta, names, ticks, traces)
}

func runLive(cmd *cobra.Command, args []string) error {
	model := args[0]

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	build := func() (opinion.Model, error) {
		rng := rand.New(rand.NewSource(cfg.Seed))
		return registry.GetModel(model, cfg.ExperimentParams(model), rng)
	}

	m, err := viz.NewModel(build)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
