package loader

import (
	"strings"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// GMTReader parses gene-set collections in the tab-separated GMT format:
// term <tab> description <tab> gene1 <tab> gene2 ...
type GMTReader struct {
	log *internal.Logger
}

// NewGMTReader creates a GMT-backed gene set reader
func NewGMTReader() ports.GeneSetReader {
	return &GMTReader{log: internal.NewLogger("Loader")}
}

// ReadGeneSets parses the collection; later duplicates of a term replace
// earlier ones, duplicated member ids within a set are collapsed
func (r *GMTReader) ReadGeneSets(path string) (gsea.GeneSetCollection, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	collection := make(gsea.GeneSetCollection)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, errors.ParseError("GMT line needs term, description and at least one gene: " + line)
		}
		term := strings.TrimSpace(fields[0])

		seen := make(map[string]struct{})
		members := make([]string, 0, len(fields)-2)
		for _, g := range fields[2:] {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			members = append(members, g)
		}
		if _, dup := collection[term]; dup {
			r.log.Warn("duplicated gene set term %s, keeping the last definition", term)
		}
		collection[term] = gsea.GeneSet{Term: term, Members: members}
	}

	if len(collection) == 0 {
		return nil, errors.ParseError("GMT file " + path + " contains no gene sets")
	}
	return collection, nil
}
