package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/counterworks/counterlog/internal/ledger"
)

// CSV reads the directory from a flat file with columns
// member_id,name,grade,pin_hash,status — the same shape as the member sheet
// the directory was historically kept in. The file is re-read on every call
// so edits take effect without a restart.
type CSV struct {
	path string
}

// NewCSV creates a CSV directory over the file at path.
func NewCSV(path string) (*CSV, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("roster file: %w", err)
	}
	return &CSV{path: path}, nil
}

// List returns all active members.
func (c *CSV) List(_ context.Context) ([]Member, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []Member
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster file: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == "member_id" {
				continue
			}
		}
		if len(row) < 2 || row[0] == "" {
			continue
		}
		field := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		status := Status(field(4))
		if status == "" {
			status = StatusActive
		}
		if status != StatusActive {
			continue
		}
		out = append(out, Member{
			ID:      field(0),
			Name:    field(1),
			Grade:   field(2),
			PINHash: field(3),
			Status:  status,
		})
	}
	return out, nil
}

// FindByID returns the active member with the given id, or ErrNotFound.
func (c *CSV) FindByID(ctx context.Context, id string) (*Member, error) {
	members, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindActor implements ledger.Directory.
func (c *CSV) FindActor(ctx context.Context, actorID string) (*ledger.Actor, error) {
	mem, err := c.FindByID(ctx, actorID)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger.Actor{ID: mem.ID, Name: mem.Name, Grade: mem.Grade}, nil
}
