package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// RNKReader parses two-column ranked lists: gene <tab> statistic
type RNKReader struct {
	log *internal.Logger
}

// NewRNKReader creates an RNK-backed ranking reader
func NewRNKReader() ports.RankingReader {
	return &RNKReader{log: internal.NewLogger("Loader")}
}

// ReadRanking parses the list without sorting it; the caller decides the
// direction. Duplicated gene ids keep their first value, missing statistics
// become 0, and infinite values are clamped to the finite min/max.
func (r *RNKReader) ReadRanking(path string) (gsea.RankedList, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	ranked := make(gsea.RankedList, 0, len(lines))
	seen := make(map[string]struct{})
	duplicated, filled := 0, 0
	finiteMin, finiteMax := math.Inf(1), math.Inf(-1)
	hasInf := false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			fields = strings.Fields(line)
		}
		if len(fields) < 2 {
			return nil, errors.ParseError("RNK line needs gene and statistic: " + line)
		}
		gene := strings.TrimSpace(fields[0])
		if _, dup := seen[gene]; dup {
			duplicated++
			continue
		}
		seen[gene] = struct{}{}

		score, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil || math.IsNaN(score) {
			filled++
			score = 0
		}
		if math.IsInf(score, 0) {
			hasInf = true
		} else {
			finiteMin = math.Min(finiteMin, score)
			finiteMax = math.Max(finiteMax, score)
		}
		ranked = append(ranked, gsea.RankedGene{Gene: gene, Score: score})
	}

	if duplicated > 0 {
		r.log.Warn("duplicated gene ids detected in ranking, keeping first values (%d dropped)", duplicated)
	}
	if filled > 0 {
		r.log.Warn("ranking contained %d missing statistics, filled with 0", filled)
	}
	if hasInf {
		r.log.Warn("ranking contains infinite statistics, clamping to finite range")
		for i, g := range ranked {
			if math.IsInf(g.Score, 1) {
				ranked[i].Score = finiteMax
			}
			if math.IsInf(g.Score, -1) {
				ranked[i].Score = finiteMin
			}
		}
	}

	tied := countTies(ranked)
	if tied > 0 {
		r.log.Warn("%d tied statistics in ranking; the order of tied genes is arbitrary", tied)
	}
	return ranked, nil
}

func countTies(ranked gsea.RankedList) int {
	byScore := make(map[float64]int, len(ranked))
	for _, g := range ranked {
		byScore[g.Score]++
	}
	tied := 0
	for _, n := range byScore {
		if n > 1 {
			tied += n
		}
	}
	return tied
}
