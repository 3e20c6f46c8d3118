package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/counterworks/counterlog/internal/ledger"
)

// Postgres keeps records in an append-only table. Only INSERT and full
// SELECTs ordered by arrival are ever issued; the adapter deliberately does
// not use transactions or advisory locks, because chain serialisation is the
// Writer's job and must hold even when the backing store is a spreadsheet.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const recordColumns = `record_id, server_timestamp, kind, date, session_label,
	actor_id, actor_name, actor_grade, note,
	start_time, end_time, duration_minutes,
	previous_hash, hash, status, ref_record_id,
	location, category, subcategory`

// ReadAll implements ledger.Store.
func (p *Postgres) ReadAll(ctx context.Context) ([]ledger.Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM ledger_records ORDER BY arrival_seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger_records: %w", err)
	}
	defer rows.Close()

	var recs []ledger.Record
	for rows.Next() {
		var rec ledger.Record
		if err := rows.Scan(
			&rec.RecordID, &rec.ServerTS, &rec.Kind, &rec.Date, &rec.Session,
			&rec.ActorID, &rec.ActorName, &rec.ActorGrade, &rec.Note,
			&rec.StartTime, &rec.EndTime, &rec.DurationMin,
			&rec.PrevHash, &rec.Hash, &rec.Status, &rec.RefRecordID,
			&rec.Location, &rec.Category, &rec.Subcategory,
		); err != nil {
			return nil, fmt.Errorf("scan ledger_records row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Append implements ledger.Store.
func (p *Postgres) Append(ctx context.Context, rec ledger.Record) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO ledger_records (`+recordColumns+`) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		rec.RecordID, rec.ServerTS, rec.Kind, rec.Date, rec.Session,
		rec.ActorID, rec.ActorName, rec.ActorGrade, rec.Note,
		rec.StartTime, rec.EndTime, rec.DurationMin,
		rec.PrevHash, rec.Hash, rec.Status, rec.RefRecordID,
		rec.Location, rec.Category, rec.Subcategory,
	)
	if err != nil {
		return fmt.Errorf("insert ledger record: %w", err)
	}
	return nil
}
