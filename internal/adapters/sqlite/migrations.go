package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"tradejournal/internal/domain"
)

// migration upgrades the persisted schema by one version. Migrations run
// once, inside a transaction, in version order. Each must be idempotent:
// running it against already-migrated data is a no-op.
type migration struct {
	toVersion int
	name      string
	apply     func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{toVersion: 2, name: "fix legacy side attribution", apply: migrateLegacySideAttribution},
}

// runMigrations brings the persisted schema up to domain.SchemaVersion.
func (r *Repository) runMigrations(ctx context.Context) error {
	current := 1
	if v, err := r.metaValue(ctx, "schema_version"); err == nil && v != "" {
		if n, perr := strconv.Atoi(v); perr == nil {
			current = n
		}
	}

	for _, m := range migrations {
		if current >= m.toVersion {
			continue
		}
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}
		if err := m.apply(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration to v%d (%s) failed: %w", m.toVersion, m.name, err)
		}
		if err := setMeta(ctx, tx, "schema_version", strconv.Itoa(m.toVersion)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration to v%d: %w", m.toVersion, err)
		}
		current = m.toVersion
		r.logger.Info(ctx, "Journal schema migrated",
			map[string]interface{}{"version": m.toVersion, "migration": m.name})
	}
	return nil
}

// migrateLegacySideAttribution repairs trades written by the old
// adjacency-pairing matcher, which could attach the exit order as the entry
// leg. Such rows are recognizable by entry_time later than exit_time: the
// legs are swapped back and side is re-derived from the true entry order.
// Only side, prices and times change; stored profit figures are untouched.
// Timestamps are compared parsed, not in SQL: the stored RFC 3339 strings
// have variable-width fractional seconds and do not collate chronologically.
func migrateLegacySideAttribution(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
	SELECT rowid, side, entry_price, exit_price, entry_time, exit_time, entry_order, exit_order
	FROM trades`)
	if err != nil {
		return err
	}

	type candidate struct {
		rowid               int64
		side                string
		entryPrice          float64
		exitPrice           float64
		entryTime, exitTime string
		entryJSON, exitJSON string
	}
	var candidates []candidate
	for rows.Next() {
		var f candidate
		if err := rows.Scan(&f.rowid, &f.side, &f.entryPrice, &f.exitPrice,
			&f.entryTime, &f.exitTime, &f.entryJSON, &f.exitJSON); err != nil {
			rows.Close()
			return err
		}
		candidates = append(candidates, f)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, f := range candidates {
		entryT, err := time.Parse(timeFormat, f.entryTime)
		if err != nil {
			continue
		}
		exitT, err := time.Parse(timeFormat, f.exitTime)
		if err != nil {
			continue
		}
		if !entryT.After(exitT) {
			continue
		}

		// Swap legs; the stored "exit" order is the one that actually opened
		// the position.
		var trueEntry domain.Order
		if err := json.Unmarshal([]byte(f.exitJSON), &trueEntry); err != nil {
			// Unreadable legacy payload; leave the row as is.
			continue
		}
		side := string(domain.Short)
		if trueEntry.Side == domain.Buy {
			side = string(domain.Long)
		}
		if _, err := tx.ExecContext(ctx, `
		UPDATE trades SET
			side = ?,
			entry_price = ?, exit_price = ?,
			entry_time = ?, exit_time = ?,
			entry_order = ?, exit_order = ?
		WHERE rowid = ?`,
			side, f.exitPrice, f.entryPrice, f.exitTime, f.entryTime,
			f.exitJSON, f.entryJSON, f.rowid,
		); err != nil {
			return err
		}
	}
	return nil
}
