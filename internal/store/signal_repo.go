package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tokenpulse/internal/contracts"
)

// SignalRepository persists emitted signals. The table is append-only:
// a signal is immutable once written, re-emissions after the dedup
// window create new rows.
type SignalRepository struct {
	db *pgxpool.Pool
}

// NewSignalRepository creates a SignalRepository instance.
func NewSignalRepository(db *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{db: db}
}

// Insert appends one emitted signal.
func (r *SignalRepository) Insert(ctx context.Context, sig contracts.EmittedSignal) error {
	provenanceJSON, err := json.Marshal(sig.Provenance)
	if err != nil {
		return fmt.Errorf("marshal provenance: %w", err)
	}

	query := `
		INSERT INTO signals.emitted (
			mint,
			symbol,
			name,
			cycle_id,
			path,
			momentum_score,
			quality_score,
			risk_score,
			price_usd,
			market_cap,
			liquidity_usd,
			volume_24h,
			price_change_1h,
			provenance,
			emitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.Exec(ctx, query,
		sig.Mint,
		sig.Symbol,
		sig.Name,
		sig.CycleID,
		string(sig.Path),
		sig.MomentumScore,
		sig.QualityScore,
		sig.RiskScore,
		sig.PriceUSD,
		sig.MarketCap,
		sig.LiquidityUSD,
		sig.Volume24h,
		sig.PriceChange1h,
		provenanceJSON,
		sig.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	return nil
}

// Recent returns the most recently emitted signals, newest first.
func (r *SignalRepository) Recent(ctx context.Context, limit int) ([]contracts.EmittedSignal, error) {
	query := `
		SELECT
			mint,
			symbol,
			name,
			cycle_id,
			path,
			momentum_score,
			quality_score,
			risk_score,
			price_usd,
			market_cap,
			liquidity_usd,
			volume_24h,
			price_change_1h,
			provenance,
			emitted_at
		FROM signals.emitted
		ORDER BY emitted_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	var signals []contracts.EmittedSignal
	for rows.Next() {
		var sig contracts.EmittedSignal
		var path string
		var provenanceJSON []byte

		err := rows.Scan(
			&sig.Mint,
			&sig.Symbol,
			&sig.Name,
			&sig.CycleID,
			&path,
			&sig.MomentumScore,
			&sig.QualityScore,
			&sig.RiskScore,
			&sig.PriceUSD,
			&sig.MarketCap,
			&sig.LiquidityUSD,
			&sig.Volume24h,
			&sig.PriceChange1h,
			&provenanceJSON,
			&sig.EmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}

		sig.Path = contracts.GatePath(path)
		if len(provenanceJSON) > 0 {
			if err := json.Unmarshal(provenanceJSON, &sig.Provenance); err != nil {
				return nil, fmt.Errorf("unmarshal provenance: %w", err)
			}
		}

		signals = append(signals, sig)
	}

	return signals, rows.Err()
}

// EmittedSince returns the latest emission time per mint at or after
// the cutoff, used to rebuild the dedup window on startup.
func (r *SignalRepository) EmittedSince(ctx context.Context, cutoff time.Time) (map[string]time.Time, error) {
	query := `
		SELECT mint, MAX(emitted_at)
		FROM signals.emitted
		WHERE emitted_at >= $1
		GROUP BY mint
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query emitted since: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]time.Time)
	for rows.Next() {
		var mint string
		var at time.Time
		if err := rows.Scan(&mint, &at); err != nil {
			return nil, fmt.Errorf("scan emitted row: %w", err)
		}
		seen[mint] = at
	}

	return seen, rows.Err()
}
