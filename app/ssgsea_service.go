package app

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
	"github.com/TenSixteenBio/GSEApy/internal/enrichment"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/internal/ranking"
)

// SingleSampleOptions configures a single-sample GSEA run
type SingleSampleOptions struct {
	SampleNorm gsea.SampleNorm
	Weight     float64
	MinSize    int
	MaxSize    int
	Threads    int
}

// Validate checks option consistency
func (o SingleSampleOptions) Validate() error {
	if o.MinSize > o.MaxSize {
		return errors.ConfigInvalid("min_size must be <= max_size")
	}
	if o.Weight < 0 {
		return errors.ConfigInvalid("weight must be >= 0")
	}
	if o.Threads < 1 {
		return errors.ConfigInvalid("thread_count must be >= 1")
	}
	return nil
}

// SingleSampleService scores every gene set against every sample
// independently, with no permutation null. The enrichment statistic is the
// area under the running sum rather than its peak.
type SingleSampleService struct {
	log *internal.Logger
}

// NewSingleSampleService creates the service
func NewSingleSampleService() *SingleSampleService {
	return &SingleSampleService{log: internal.NewLogger("SingleSampleService")}
}

// Run computes per-sample enrichment. Results are ordered sample-major in
// matrix sample order, then by term name.
func (s *SingleSampleService) Run(ctx context.Context, matrix gsea.ExpressionMatrix, collection gsea.GeneSetCollection, opts SingleSampleOptions) ([]gsea.SampleEnrichment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	sets := collection.Filter(matrix.Genes, opts.MinSize, opts.MaxSize)
	s.log.Info("%04d gene sets used for single-sample scoring across %d samples", len(sets), len(matrix.Samples))

	results := make([][]gsea.SampleEnrichment, len(matrix.Samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)
	for si := range matrix.Samples {
		si := si
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			column := make([]float64, len(matrix.Genes))
			for gi := range matrix.Genes {
				column[gi] = matrix.Values[gi][si]
			}
			normalized := normalizeSample(column, opts.SampleNorm)
			order := ranking.Order(normalized, false)

			sorted := make([]float64, len(order))
			for pos, gi := range order {
				sorted[pos] = normalized[gi]
			}

			hit := make([]bool, len(order))
			rows := make([]gsea.SampleEnrichment, len(sets))
			for ti, set := range sets {
				for pos, gi := range order {
					hit[pos] = set.Member[gi]
				}
				es, err := areaScore(sorted, hit, opts.Weight)
				if err != nil {
					return errors.Wrapf(err, "sample %s gene set %s", matrix.Samples[si], set.Term)
				}
				rows[ti] = gsea.SampleEnrichment{
					Sample: matrix.Samples[si],
					Term:   set.Term,
					ES:     es,
				}
			}
			results[si] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flat := make([]gsea.SampleEnrichment, 0, len(matrix.Samples)*len(sets))
	for _, rows := range results {
		flat = append(flat, rows...)
	}

	// NES rescales by the ES spread over the whole batch
	minES, maxES := math.Inf(1), math.Inf(-1)
	for _, r := range flat {
		minES = math.Min(minES, r.ES)
		maxES = math.Max(maxES, r.ES)
	}
	spread := maxES - minES
	for i := range flat {
		if spread > 0 {
			flat[i].NES = flat[i].ES / spread
		} else {
			flat[i].NES = math.NaN()
		}
	}
	return flat, nil
}

// areaScore is the single-sample enrichment statistic: the sum of the
// running-sum profile instead of its signed peak
func areaScore(scores []float64, hit []bool, weight float64) (float64, error) {
	profile, err := enrichment.Score(scores, hit, weight)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range profile.RES {
		sum += v
	}
	return sum, nil
}

// normalizeSample applies the configured per-sample transform
func normalizeSample(values []float64, norm gsea.SampleNorm) []float64 {
	out := make([]float64, len(values))
	switch norm {
	case gsea.NormRank:
		ranks := averageRanks(values)
		n := float64(len(values))
		for i, r := range ranks {
			out[i] = 10000.0 * r / n
		}
	case gsea.NormLogRank:
		ranks := averageRanks(values)
		n := float64(len(values))
		for i, r := range ranks {
			out[i] = math.Log(10000.0*r/n + math.E)
		}
	case gsea.NormLog:
		for i, v := range values {
			out[i] = math.Log(math.Max(v, 1) + math.E)
		}
	default:
		copy(out, values)
	}
	return out
}

// averageRanks assigns 1-based ascending ranks, averaging over ties
func averageRanks(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && values[order[j+1]] == values[order[i]] {
			j++
		}
		// ranks i+1..j+1 share the same value; assign their mean
		avg := float64(i+j+2) / 2.0
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
