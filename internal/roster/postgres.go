package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/counterworks/counterlog/internal/ledger"
)

// Postgres reads the directory from the members table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres directory backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// FindByID returns the active member with the given id, or ErrNotFound.
func (p *Postgres) FindByID(ctx context.Context, id string) (*Member, error) {
	var m Member
	err := p.pool.QueryRow(ctx,
		`SELECT member_id, name, grade, pin_hash, status
		 FROM members WHERE member_id = $1 AND status = 'ACTIVE'`, id,
	).Scan(&m.ID, &m.Name, &m.Grade, &m.PINHash, &m.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query member %s: %w", id, err)
	}
	return &m, nil
}

// List returns all active members ordered by name.
func (p *Postgres) List(ctx context.Context) ([]Member, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT member_id, name, grade, pin_hash, status
		 FROM members WHERE status = 'ACTIVE' ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Grade, &m.PINHash, &m.Status); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindActor implements ledger.Directory.
func (p *Postgres) FindActor(ctx context.Context, actorID string) (*ledger.Actor, error) {
	mem, err := p.FindByID(ctx, actorID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger.Actor{ID: mem.ID, Name: mem.Name, Grade: mem.Grade}, nil
}
