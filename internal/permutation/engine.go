// Package permutation drives null-distribution generation for enrichment
// scoring. It owns the run's concurrency and seeding; the scoring kernels it
// calls are pure functions over immutable shared inputs.
package permutation

import (
	"context"
	"log"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/enrichment"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/internal/ranking"
)

// SetResult pairs one surviving gene set with its observed profile and its
// slice of the null score table
type SetResult struct {
	Set      gsea.MatchedSet
	Observed enrichment.Profile
	Nulls    []float64
}

// Engine produces observed and null enrichment scores for a batch of gene
// sets. Workers write only their own (set, permutation) cells, so the null
// table needs no locking, just the errgroup join before normalization.
type Engine struct {
	spec gsea.PermutationSpec
}

// NewEngine creates a permutation engine for the given spec
func NewEngine(spec gsea.PermutationSpec) *Engine {
	return &Engine{spec: spec}
}

// PhenotypeInput is the expensive path: every permutation reshuffles the
// sample labels and recomputes the full ranking. Set membership masks are
// aligned to matrix gene order.
type PhenotypeInput struct {
	Matrix    gsea.ExpressionMatrix
	Phenotype gsea.Phenotype
	Metric    ranking.Metric
	Ascending bool
	Sets      []gsea.MatchedSet
}

// RunPhenotype computes the observed ranking and profile plus the null table
// under label reshuffling. The returned ranked list is the observed one.
func (e *Engine) RunPhenotype(ctx context.Context, in PhenotypeInput) ([]SetResult, gsea.RankedList, error) {
	scores, err := ranking.ScoreGenes(in.Matrix.Values, in.Phenotype.Assignment, in.Metric)
	if err != nil {
		return nil, nil, errors.Wrap(err, "observed ranking failed")
	}
	order := ranking.Order(scores, in.Ascending)

	ranked := make(gsea.RankedList, len(order))
	for pos, gi := range order {
		ranked[pos] = gsea.RankedGene{Gene: in.Matrix.Genes[gi], Score: scores[gi]}
	}

	observedScores := ranked.Scores()
	results := make([]SetResult, len(in.Sets))
	hit := make([]bool, len(order))
	for si, set := range in.Sets {
		maskByOrder(hit, set.Member, order)
		profile, err := enrichment.Score(observedScores, hit, e.spec.Weight)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "scoring gene set %s", set.Term)
		}
		results[si] = SetResult{
			Set:      set,
			Observed: profile,
			Nulls:    make([]float64, e.spec.Num),
		}
	}

	if e.spec.Num == 0 {
		return results, ranked, nil
	}

	log.Printf("[PermutationEngine] phenotype mode: %d permutations x %d gene sets on %d threads",
		e.spec.Num, len(in.Sets), e.spec.Threads)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.spec.Threads)
	for k := 0; k < e.spec.Num; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(streamSeed(e.spec.Seed, k, 0)))

			shuffled := make([]bool, len(in.Phenotype.Assignment))
			copy(shuffled, in.Phenotype.Assignment)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			permScores, err := ranking.ScoreGenes(in.Matrix.Values, shuffled, in.Metric)
			if err != nil {
				return errors.Wrapf(err, "permutation %d ranking failed", k)
			}
			permOrder := ranking.Order(permScores, in.Ascending)

			sorted := make([]float64, len(permOrder))
			for pos, gi := range permOrder {
				sorted[pos] = permScores[gi]
			}

			permHit := make([]bool, len(permOrder))
			for si := range in.Sets {
				maskByOrder(permHit, in.Sets[si].Member, permOrder)
				es, err := enrichment.ScoreOnly(sorted, permHit, e.spec.Weight)
				if err != nil {
					return errors.Wrapf(err, "permutation %d gene set %s", k, in.Sets[si].Term)
				}
				results[si].Nulls[k] = es
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, ranked, nil
}

// PrerankedInput is the cheap path: the ranking is fixed and nulls come from
// random gene subsets of matched size. Set membership masks are aligned to
// ranking order.
type PrerankedInput struct {
	Ranked gsea.RankedList
	Sets   []gsea.MatchedSet
}

// RunPreranked computes observed profiles and the null table against a fixed
// ranking by sampling random subsets without replacement.
func (e *Engine) RunPreranked(ctx context.Context, in PrerankedInput) ([]SetResult, error) {
	scores := in.Ranked.Scores()

	results := make([]SetResult, len(in.Sets))
	for si, set := range in.Sets {
		profile, err := enrichment.Score(scores, set.Member, e.spec.Weight)
		if err != nil {
			return nil, errors.Wrapf(err, "scoring gene set %s", set.Term)
		}
		results[si] = SetResult{
			Set:      set,
			Observed: profile,
			Nulls:    make([]float64, e.spec.Num),
		}
	}

	if e.spec.Num == 0 {
		return results, nil
	}

	log.Printf("[PermutationEngine] gene_set mode: %d permutations x %d gene sets on %d threads",
		e.spec.Num, len(in.Sets), e.spec.Threads)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.spec.Threads)
	for k := 0; k < e.spec.Num; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hit := make([]bool, len(scores))
			for si := range in.Sets {
				rng := rand.New(rand.NewSource(streamSeed(e.spec.Seed, k, si+1)))
				chosen := sampleIndices(rng, len(scores), in.Sets[si].MatchedSize)
				for _, i := range chosen {
					hit[i] = true
				}
				es, err := enrichment.ScoreOnly(scores, hit, e.spec.Weight)
				if err != nil {
					return errors.Wrapf(err, "permutation %d gene set %s", k, in.Sets[si].Term)
				}
				results[si].Nulls[k] = es
				for _, i := range chosen {
					hit[i] = false
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// maskByOrder projects a universe-order membership mask onto ranking order
func maskByOrder(dst, member []bool, order []int) {
	for pos, gi := range order {
		dst[pos] = member[gi]
	}
}

// sampleIndices draws m distinct positions from [0, n) using Floyd's
// algorithm; the draw sequence depends only on the generator state
func sampleIndices(rng *rand.Rand, n, m int) []int {
	chosen := make([]int, 0, m)
	taken := make(map[int]struct{}, m)
	for i := n - m; i < n; i++ {
		j := rng.Intn(i + 1)
		if _, ok := taken[j]; ok {
			j = i
		}
		taken[j] = struct{}{}
		chosen = append(chosen, j)
	}
	return chosen
}
