// Package postgres persists enrichment runs behind the RunRepository port.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// EnsureSchema creates the run tables when they do not exist yet
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS enrichment_runs (
		id               UUID PRIMARY KEY,
		module           TEXT NOT NULL,
		metric           TEXT NOT NULL DEFAULT '',
		permutation_mode TEXT NOT NULL,
		permutation_num  INTEGER NOT NULL,
		seed             BIGINT NOT NULL,
		weight           DOUBLE PRECISION NOT NULL,
		min_size         INTEGER NOT NULL,
		max_size         INTEGER NOT NULL,
		gene_count       INTEGER NOT NULL,
		set_count        INTEGER NOT NULL,
		started_at       TIMESTAMPTZ NOT NULL,
		finished_at      TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS enrichment_records (
		run_id        UUID NOT NULL REFERENCES enrichment_runs(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		term          TEXT NOT NULL,
		es            DOUBLE PRECISION NOT NULL,
		nes           DOUBLE PRECISION,
		pval          DOUBLE PRECISION,
		fdr           DOUBLE PRECISION,
		matched_size  INTEGER NOT NULL,
		gene_set_size INTEGER NOT NULL,
		hit_indices   JSONB NOT NULL,
		lead_genes    JSONB NOT NULL,
		PRIMARY KEY (run_id, position)
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "ensuring run schema")
	}
	return nil
}

// SaveRun inserts the summary and all records in one transaction
func (r *runRepository) SaveRun(ctx context.Context, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO enrichment_runs (
		id, module, metric, permutation_mode, permutation_num, seed, weight,
		min_size, max_size, gene_count, set_count, started_at, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		summary.ID, summary.Module, summary.Metric, summary.PermutationMode.String(),
		summary.PermutationNum, int64(summary.Seed), summary.Weight,
		summary.MinSize, summary.MaxSize, summary.GeneCount, summary.SetCount,
		summary.StartedAt, summary.FinishedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting run summary")
	}

	for i, rec := range records {
		hits, err := json.Marshal(rec.HitIndices)
		if err != nil {
			return errors.Wrapf(err, "marshaling hit indices for %s", rec.Term)
		}
		leads, err := json.Marshal(rec.LeadGenes)
		if err != nil {
			return errors.Wrapf(err, "marshaling lead genes for %s", rec.Term)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO enrichment_records (
			run_id, position, term, es, nes, pval, fdr,
			matched_size, gene_set_size, hit_indices, lead_genes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			summary.ID, i, rec.Term, rec.ES,
			nullableFloat(rec.NES), nullableFloat(rec.Pval), nullableFloat(rec.FDR),
			rec.MatchedSize, rec.GeneSetSize, hits, leads,
		)
		if err != nil {
			return errors.Wrapf(err, "inserting record %s", rec.Term)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing run")
	}
	return nil
}

// GetRun fetches one run summary by id
func (r *runRepository) GetRun(ctx context.Context, runID string) (*gsea.RunSummary, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT
		id, module, metric, permutation_mode, permutation_num, seed, weight,
		min_size, max_size, gene_count, set_count, started_at, finished_at
		FROM enrichment_runs WHERE id = $1`, runID)

	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying run")
	}
	return summary, nil
}

// ListRuns fetches the most recent runs, newest first
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]gsea.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryxContext(ctx, `SELECT
		id, module, metric, permutation_mode, permutation_num, seed, weight,
		min_size, max_size, gene_count, set_count, started_at, finished_at
		FROM enrichment_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var summaries []gsea.RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning run row")
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}

// GetRecords fetches a run's records in their original aggregator order
func (r *runRepository) GetRecords(ctx context.Context, runID string) ([]gsea.EnrichmentRecord, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT
		term, es, nes, pval, fdr, matched_size, gene_set_size, hit_indices, lead_genes
		FROM enrichment_records WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	defer rows.Close()

	var records []gsea.EnrichmentRecord
	for rows.Next() {
		var rec gsea.EnrichmentRecord
		var nes, pval, fdr sql.NullFloat64
		var hits, leads []byte
		if err := rows.Scan(&rec.Term, &rec.ES, &nes, &pval, &fdr,
			&rec.MatchedSize, &rec.GeneSetSize, &hits, &leads); err != nil {
			return nil, errors.Wrap(err, "scanning record row")
		}
		rec.NES = floatOrNaN(nes)
		rec.Pval = floatOrNaN(pval)
		rec.FDR = floatOrNaN(fdr)
		if err := json.Unmarshal(hits, &rec.HitIndices); err != nil {
			return nil, errors.Wrapf(err, "unmarshaling hit indices for %s", rec.Term)
		}
		if err := json.Unmarshal(leads, &rec.LeadGenes); err != nil {
			return nil, errors.Wrapf(err, "unmarshaling lead genes for %s", rec.Term)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*gsea.RunSummary, error) {
	var s gsea.RunSummary
	var mode string
	var seed int64
	if err := row.Scan(&s.ID, &s.Module, &s.Metric, &mode, &s.PermutationNum, &seed,
		&s.Weight, &s.MinSize, &s.MaxSize, &s.GeneCount, &s.SetCount,
		&s.StartedAt, &s.FinishedAt); err != nil {
		return nil, err
	}
	s.Seed = uint64(seed)
	if m, err := gsea.ParsePermutationMode(mode); err == nil {
		s.PermutationMode = m
	}
	return &s, nil
}

// NaN statistics persist as NULL so numeric queries stay sane
func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
