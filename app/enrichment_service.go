package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
	"github.com/TenSixteenBio/GSEApy/internal/aggregate"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/internal/permutation"
	"github.com/TenSixteenBio/GSEApy/internal/ranking"
	"github.com/TenSixteenBio/GSEApy/internal/significance"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// Options is the configuration surface of one enrichment run
type Options struct {
	Metric          ranking.Metric
	PermutationMode gsea.PermutationMode
	MinSize         int
	MaxSize         int
	PermutationNum  int
	Weight          float64
	Seed            uint64
	Threads         int
	Ascending       bool
	SortAscending   bool
	GraphNum        int
}

// Validate checks option consistency before any scoring starts
func (o Options) Validate() error {
	if o.MinSize > o.MaxSize {
		return errors.ConfigInvalid("min_size must be <= max_size")
	}
	return o.spec().Validate()
}

func (o Options) spec() gsea.PermutationSpec {
	return gsea.PermutationSpec{
		Mode:    o.PermutationMode,
		Num:     o.PermutationNum,
		Seed:    o.Seed,
		Weight:  o.Weight,
		Threads: o.Threads,
	}
}

// Result is one completed enrichment run
type Result struct {
	Summary gsea.RunSummary
	Ranking gsea.RankedList
	Records []gsea.EnrichmentRecord
}

// EnrichmentService orchestrates the full pipeline: ranking, gene-set
// filtering, permutation scoring, significance normalization and record
// assembly. The run is atomic; any structural error aborts with no output.
type EnrichmentService struct {
	repo ports.RunRepository // optional, nil disables persistence
	log  *internal.Logger
}

// NewEnrichmentService creates the service; repo may be nil
func NewEnrichmentService(repo ports.RunRepository) *EnrichmentService {
	return &EnrichmentService{
		repo: repo,
		log:  internal.NewLogger("EnrichmentService"),
	}
}

// Run executes phenotype GSEA over grouped expression data.
// With PermutationMode == ModeGeneSet the ranking is computed once from the
// true labels and nulls come from gene resampling, which is much cheaper.
func (s *EnrichmentService) Run(ctx context.Context, matrix gsea.ExpressionMatrix, labels []string, collection gsea.GeneSetCollection, opts Options) (*Result, error) {
	started := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	pheno, err := gsea.PhenotypeFromLabels(labels)
	if err != nil {
		return nil, err
	}

	engine := permutation.NewEngine(opts.spec())

	var results []permutation.SetResult
	var ranked gsea.RankedList

	switch opts.PermutationMode {
	case gsea.ModePhenotype:
		sets := collection.Filter(matrix.Genes, opts.MinSize, opts.MaxSize)
		s.log.Info("%04d gene sets used for statistical testing", len(sets))
		results, ranked, err = engine.RunPhenotype(ctx, permutation.PhenotypeInput{
			Matrix:    matrix,
			Phenotype: pheno,
			Metric:    opts.Metric,
			Ascending: opts.Ascending,
			Sets:      sets,
		})
		if err != nil {
			return nil, err
		}
	case gsea.ModeGeneSet:
		ranked, err = ranking.Rank(matrix, pheno, opts.Metric, opts.Ascending)
		if err != nil {
			return nil, err
		}
		return s.runPreranked(ctx, started, "gsea", opts.Metric.String(), ranked, collection, opts)
	default:
		return nil, errors.ConfigInvalid("unknown permutation mode")
	}

	records := s.finalize(ranked, results, opts)
	summary := s.summarize("gsea", opts.Metric.String(), opts, len(ranked), len(records), started)
	if err := s.persist(ctx, summary, records); err != nil {
		return nil, err
	}
	return &Result{Summary: summary, Ranking: ranked, Records: records}, nil
}

// RunPreranked executes GSEA against a caller-supplied ranking. The list is
// re-sorted (stably) to honor the ascending option, then validated.
func (s *EnrichmentService) RunPreranked(ctx context.Context, ranked gsea.RankedList, collection gsea.GeneSetCollection, opts Options) (*Result, error) {
	started := time.Now()
	opts.PermutationMode = gsea.ModeGeneSet
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ranked.Sort(opts.Ascending)
	if err := ranked.Validate(); err != nil {
		return nil, err
	}
	return s.runPreranked(ctx, started, "prerank", "", ranked, collection, opts)
}

func (s *EnrichmentService) runPreranked(ctx context.Context, started time.Time, module, metric string, ranked gsea.RankedList, collection gsea.GeneSetCollection, opts Options) (*Result, error) {
	sets := collection.Filter(ranked.Genes(), opts.MinSize, opts.MaxSize)
	s.log.Info("%04d gene sets used for statistical testing", len(sets))

	engine := permutation.NewEngine(opts.spec())
	results, err := engine.RunPreranked(ctx, permutation.PrerankedInput{
		Ranked: ranked,
		Sets:   sets,
	})
	if err != nil {
		return nil, err
	}

	records := s.finalize(ranked, results, opts)
	summary := s.summarize(module, metric, opts, len(ranked), len(records), started)
	if err := s.persist(ctx, summary, records); err != nil {
		return nil, err
	}
	return &Result{Summary: summary, Ranking: ranked, Records: records}, nil
}

func (s *EnrichmentService) finalize(ranked gsea.RankedList, results []permutation.SetResult, opts Options) []gsea.EnrichmentRecord {
	scored := make([]significance.Scored, len(results))
	for i, r := range results {
		scored[i] = significance.Scored{
			Term:  r.Set.Term,
			ES:    r.Observed.ES,
			Nulls: r.Nulls,
		}
	}
	normalized := significance.Normalize(scored)
	return aggregate.Assemble(ranked, results, normalized, aggregate.Options{
		SortAscending: opts.SortAscending,
		GraphNum:      opts.GraphNum,
	})
}

func (s *EnrichmentService) summarize(module, metric string, opts Options, geneCount, setCount int, started time.Time) gsea.RunSummary {
	return gsea.RunSummary{
		ID:              uuid.NewString(),
		Module:          module,
		Metric:          metric,
		PermutationMode: opts.PermutationMode,
		PermutationNum:  opts.PermutationNum,
		Seed:            opts.Seed,
		Weight:          opts.Weight,
		MinSize:         opts.MinSize,
		MaxSize:         opts.MaxSize,
		GeneCount:       geneCount,
		SetCount:        setCount,
		StartedAt:       started,
		FinishedAt:      time.Now(),
	}
}

func (s *EnrichmentService) persist(ctx context.Context, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveRun(ctx, summary, records); err != nil {
		return errors.Wrap(err, "persisting enrichment run")
	}
	return nil
}
