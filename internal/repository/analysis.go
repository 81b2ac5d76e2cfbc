package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wavetrader/wave-backend/internal/models"
)

type AnalysisRepo struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

func (r *AnalysisRepo) Record(ctx context.Context, a *models.AnalysisRecord) (*models.AnalysisRecord, error) {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO analysis_history
		 (timestamp, token_address, token_symbol, model, strategy, duration_ms)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, timestamp, token_address, token_symbol, model, strategy, duration_ms, created_at`,
		ts, a.TokenAddress, a.TokenSymbol, a.Model, a.Strategy, a.DurationMs,
	)
	return scanAnalysis(row)
}

// Recent returns the newest analyses, most recent first.
func (r *AnalysisRepo) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, timestamp, token_address, token_symbol, model, strategy, duration_ms, created_at
		 FROM analysis_history
		 ORDER BY timestamp DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnalysisRecord
	for rows.Next() {
		var a models.AnalysisRecord
		if err := rows.Scan(
			&a.ID, &a.Timestamp, &a.TokenAddress, &a.TokenSymbol,
			&a.Model, &a.Strategy, &a.DurationMs, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepo) CountForToken(ctx context.Context, tokenAddress string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis_history WHERE token_address = $1`,
		tokenAddress,
	).Scan(&count)
	return count, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*models.AnalysisRecord, error) {
	var a models.AnalysisRecord
	err := row.Scan(
		&a.ID, &a.Timestamp, &a.TokenAddress, &a.TokenSymbol,
		&a.Model, &a.Strategy, &a.DurationMs, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
