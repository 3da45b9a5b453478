// Command itpc runs inter-trial phase coherence analysis over a CSV of
// complex spectral coefficients.
//
// Usage:
//
//	itpc [flags]
//
// Without -config it uses the built-in defaults (four conditions of 30
// trials, syllable and phrase rate bands) and only needs -data.
//
// Examples:
//
//	itpc -data coefficients.csv
//	itpc -config study.yaml
//	itpc -config study.yaml -seed 12345 -out results.csv
//	itpc -data coefficients.csv -permutations 5000 -workers 8
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/phaselab/itpc/analysis"
	"github.com/phaselab/itpc/config"
	"github.com/phaselab/itpc/ingest"
	"github.com/phaselab/itpc/montecarlo"
	"github.com/phaselab/itpc/report"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	dataFile := flag.String("data", "", "input CSV of complex coefficients (overrides config)")
	outFile := flag.String("out", "", "output CSV for the result table (overrides config)")
	seed := flag.Uint64("seed", 0, "random seed for reproducible runs (0 = nondeterministic)")
	permutations := flag.Int("permutations", 0, "Monte Carlo permutations per cell (overrides config)")
	confidence := flag.Float64("confidence", 0, "confidence level in (0,1) (overrides config)")
	workers := flag.Int("workers", -1, "parallel workers, 0 = serial (overrides config)")
	quiet := flag.Bool("quiet", false, "suppress per-row ingest and analysis warnings")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: itpc [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs inter-trial phase coherence analysis with Monte Carlo\n")
		fmt.Fprintf(os.Stderr, "significance bounds over a CSV of complex coefficients.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  itpc -data coefficients.csv\n")
		fmt.Fprintf(os.Stderr, "  itpc -config study.yaml -seed 12345 -out results.csv\n")
	}
	flag.Parse()

	if err := run(*configPath, *dataFile, *outFile, *seed, *permutations, *confidence, *workers, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataFile, outFile string, seed uint64, permutations int, confidence float64, workers int, quiet bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if outFile != "" {
		cfg.OutputFile = outFile
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if permutations != 0 {
		cfg.Permutations = permutations
	}
	if confidence != 0 {
		cfg.Confidence = confidence
	}
	if workers >= 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DataFile == "" {
		return fmt.Errorf("no input data: pass -data or set data_file in the config")
	}

	log := zap.NewNop()
	if !quiet {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer log.Sync()
	}

	f, err := os.Open(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.DataFile, err)
	}
	defer f.Close()

	dataset, err := ingest.NewLoader(ingest.WithLogger(log)).LoadCSV(f)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.DataFile, err)
	}

	conds, err := cfg.ConditionSet(len(dataset.Participants))
	if err != nil {
		return err
	}

	bands := make([]analysis.Band, len(cfg.Bands))
	for i, b := range cfg.Bands {
		bands[i] = analysis.Band{Label: b.Label, Bins: b.Bins}
	}

	opts := []analysis.Option{
		analysis.WithPermutations(cfg.Permutations),
		analysis.WithConfidence(cfg.Confidence),
		analysis.WithWorkers(cfg.Workers),
		analysis.WithLogger(log),
	}
	if cfg.Seed != 0 {
		opts = append(opts, analysis.WithEngine(montecarlo.NewEngine(montecarlo.WithSeed(cfg.Seed))))
	}

	table, err := analysis.New(opts...).Run(dataset.Tensor, conds, bands)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if cfg.OutputFile != "" {
		out, err := os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("creating %s: %w", cfg.OutputFile, err)
		}
		if err := report.WriteCSV(out, table, report.DefaultDecimals); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.OutputFile, err)
		}
	}

	if err := report.WriteConsole(os.Stdout, table, report.DefaultDecimals); err != nil {
		return err
	}

	order := make([]string, len(cfg.Conditions))
	for i, c := range cfg.Conditions {
		order[i] = c.Name
	}
	for _, band := range bands {
		fmt.Printf("\n%s: per-condition distribution across electrodes\n", band.Label)
		values := report.ConditionValues(table, band.Label)
		if err := report.WriteConditionSummary(os.Stdout, values, order, report.DefaultDecimals); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
