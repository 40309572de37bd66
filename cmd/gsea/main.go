package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/TenSixteenBio/GSEApy/adapters/loader"
	"github.com/TenSixteenBio/GSEApy/adapters/postgres"
	"github.com/TenSixteenBio/GSEApy/adapters/report"
	"github.com/TenSixteenBio/GSEApy/app"
	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/config"
	"github.com/TenSixteenBio/GSEApy/internal/ranking"
	"github.com/TenSixteenBio/GSEApy/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gsea",
		Short: "Gene Set Enrichment Analysis",
	}

	rootCmd.AddCommand(
		newGSEACmd(),
		newPrerankCmd(),
		newSSGSEACmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFlags is the shared option surface of the gsea and prerank commands
type runFlags struct {
	gmt       string
	out       string
	metric    string
	permType  string
	minSize   int
	maxSize   int
	permNum   int
	weight    float64
	seed      uint64
	threads   int
	ascending bool
	graphNum  int
	persist   bool
}

func registerRunFlags(cmd *cobra.Command, f *runFlags, cfg config.AnalysisConfig, withMetric bool) {
	cmd.Flags().StringVarP(&f.gmt, "gmt", "g", "", "gene set collection in GMT format (required)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "gsea_report.tsv", "report path (.tsv or .xlsx)")
	cmd.Flags().IntVar(&f.minSize, "min-size", cfg.MinSize, "minimum matched gene set size")
	cmd.Flags().IntVar(&f.maxSize, "max-size", cfg.MaxSize, "maximum matched gene set size")
	cmd.Flags().IntVarP(&f.permNum, "permutations", "n", cfg.PermutationNum, "number of permutations")
	cmd.Flags().Float64VarP(&f.weight, "weight", "w", cfg.Weight, "enrichment weighting exponent")
	cmd.Flags().Uint64Var(&f.seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", cfg.Threads, "worker threads")
	cmd.Flags().BoolVar(&f.ascending, "ascending", cfg.Ascending, "rank ascending instead of descending")
	cmd.Flags().IntVar(&f.graphNum, "graph-num", cfg.GraphNum, "records that keep full running-sum profiles")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "store the run in the results database")
	if withMetric {
		cmd.Flags().StringVarP(&f.metric, "metric", "m", cfg.Metric, "ranking metric")
		cmd.Flags().StringVar(&f.permType, "permutation-type", cfg.PermutationType, "phenotype or gene_set")
	}
	_ = cmd.MarkFlagRequired("gmt")
}

func (f *runFlags) options(cfg config.AnalysisConfig) (app.Options, error) {
	opts := app.Options{
		MinSize:        f.minSize,
		MaxSize:        f.maxSize,
		PermutationNum: f.permNum,
		Weight:         f.weight,
		Seed:           f.seed,
		Threads:        f.threads,
		Ascending:      f.ascending,
		GraphNum:       f.graphNum,
	}
	if f.permNum < 0 {
		opts.PermutationNum = 0
	}
	if f.metric != "" {
		metric, err := ranking.ParseMetric(f.metric)
		if err != nil {
			return app.Options{}, err
		}
		opts.Metric = metric
	}
	if f.permType != "" {
		mode, err := gsea.ParsePermutationMode(f.permType)
		if err != nil {
			return app.Options{}, err
		}
		opts.PermutationMode = mode
	}
	return opts, nil
}

func newGSEACmd() *cobra.Command {
	var f runFlags
	var clsPath string

	cmd := &cobra.Command{
		Use:   "gsea [expression file]",
		Short: "Run phenotype GSEA over a grouped expression table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts, err := f.options(cfg.Analysis)
			if err != nil {
				return err
			}

			reader := loader.NewFileReader()
			matrix, err := reader.ReadExpression(args[0])
			if err != nil {
				return err
			}
			labels, err := reader.ReadClasses(clsPath)
			if err != nil {
				return err
			}
			matrix = loader.Prepare(matrix, labels)

			collection, err := loader.NewGMTReader().ReadGeneSets(f.gmt)
			if err != nil {
				return err
			}

			repo, cleanup, err := openRepository(cfg, f.persist)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signalContext()
			defer stop()

			service := app.NewEnrichmentService(repo)
			result, err := service.Run(ctx, matrix, labels, collection, opts)
			if err != nil {
				return err
			}
			return writeReport(f.out, result)
		},
	}

	registerRunFlags(cmd, &f, defaultAnalysis(), true)
	cmd.Flags().StringVarP(&clsPath, "cls", "c", "", "phenotype labels in CLS format (required)")
	_ = cmd.MarkFlagRequired("cls")
	return cmd
}

func newPrerankCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "prerank [rnk file]",
		Short: "Run GSEA against a pre-ranked gene list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts, err := f.options(cfg.Analysis)
			if err != nil {
				return err
			}

			ranked, err := loader.NewRNKReader().ReadRanking(args[0])
			if err != nil {
				return err
			}
			collection, err := loader.NewGMTReader().ReadGeneSets(f.gmt)
			if err != nil {
				return err
			}

			repo, cleanup, err := openRepository(cfg, f.persist)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signalContext()
			defer stop()

			service := app.NewEnrichmentService(repo)
			result, err := service.RunPreranked(ctx, ranked, collection, opts)
			if err != nil {
				return err
			}
			return writeReport(f.out, result)
		},
	}

	registerRunFlags(cmd, &f, defaultAnalysis(), false)
	return cmd
}

func newSSGSEACmd() *cobra.Command {
	var gmtPath, out, sampleNorm string
	var minSize, maxSize, threads int
	var weight float64

	cmd := &cobra.Command{
		Use:   "ssgsea [expression file]",
		Short: "Run single-sample GSEA over an expression table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := loader.NewFileReader().ReadExpression(args[0])
			if err != nil {
				return err
			}
			collection, err := loader.NewGMTReader().ReadGeneSets(gmtPath)
			if err != nil {
				return err
			}
			norm, err := gsea.ParseSampleNorm(sampleNorm)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			service := app.NewSingleSampleService()
			results, err := service.Run(ctx, matrix, collection, app.SingleSampleOptions{
				SampleNorm: norm,
				Weight:     weight,
				MinSize:    minSize,
				MaxSize:    maxSize,
				Threads:    threads,
			})
			if err != nil {
				return err
			}
			return report.WriteSampleEnrichment(out, results)
		},
	}

	cmd.Flags().StringVarP(&gmtPath, "gmt", "g", "", "gene set collection in GMT format (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "ssgsea_report.tsv", "report path")
	cmd.Flags().StringVar(&sampleNorm, "sample-norm", "rank", "sample normalization: rank, log_rank, log or custom")
	cmd.Flags().IntVar(&minSize, "min-size", 15, "minimum matched gene set size")
	cmd.Flags().IntVar(&maxSize, "max-size", 500, "maximum matched gene set size")
	cmd.Flags().Float64VarP(&weight, "weight", "w", 0.25, "enrichment weighting exponent")
	cmd.Flags().IntVarP(&threads, "threads", "t", 1, "worker threads")
	_ = cmd.MarkFlagRequired("gmt")
	return cmd
}

func defaultAnalysis() config.AnalysisConfig {
	cfg, err := config.Load()
	if err != nil {
		// flag defaults fall back to the built-in analysis defaults
		return config.AnalysisConfig{
			Metric: "signal_to_noise", PermutationType: "phenotype",
			MinSize: 15, MaxSize: 500, PermutationNum: 1000,
			Weight: 1.0, Seed: 123, Threads: 1, GraphNum: 20,
		}
	}
	return cfg.Analysis
}

func openRepository(cfg *config.Config, persist bool) (ports.RunRepository, func(), error) {
	if !persist {
		return nil, func() {}, nil
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("--persist requires DATABASE_URL to be set")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to results database: %w", err)
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewRunRepository(db), func() { db.Close() }, nil
}

func writeReport(path string, result *app.Result) error {
	var writer ports.ReportWriter
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		writer = report.NewExcelWriter()
	} else {
		writer = report.NewTSVWriter()
	}
	if err := writer.WriteReport(path, result.Summary, result.Records); err != nil {
		return err
	}
	fmt.Printf("run %s finished: %d gene sets reported -> %s\n",
		result.Summary.ID, len(result.Records), path)
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
