package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/counterworks/counterlog/internal/ledger"
)

// header is the flat-table column layout. Order is significant: it matches the
// spreadsheet the ledger was originally kept in, so existing exports stay
// readable and new files stay importable.
var header = []string{
	"record_id", "server_timestamp", "kind", "date", "session_label",
	"actor_id", "actor_name", "actor_grade", "note",
	"start_time", "end_time", "duration_minutes",
	"previous_hash", "hash", "status", "ref_record_id",
	"location", "category", "subcategory",
}

// CSV is a flat-file record store: one row per record, appended in arrival
// order. Reads load the whole file; appends reopen it in O_APPEND mode so a
// single process can interleave them safely under the writer's lock.
type CSV struct {
	mu   sync.Mutex
	path string
}

// NewCSV opens (or creates, with a header row) the file at path.
func NewCSV(path string) (*CSV, error) {
	s := &CSV{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create csv store: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("create csv store: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat csv store: %w", err)
	}
	return s, nil
}

// ReadAll implements ledger.Store.
func (s *CSV) ReadAll(_ context.Context) ([]ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate rows written before columns were added

	var recs []ledger.Record
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv store: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == "record_id" {
				continue
			}
		}
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Append implements ledger.Store.
func (s *CSV) Append(_ context.Context, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv store for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(toRow(rec)); err != nil {
		return fmt.Errorf("append csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append csv row: %w", err)
	}
	return f.Sync()
}

func toRow(rec ledger.Record) []string {
	duration := ""
	if rec.Kind == ledger.KindAssistEnd {
		duration = strconv.Itoa(rec.DurationMin)
	}
	return []string{
		rec.RecordID, rec.ServerTS, string(rec.Kind), rec.Date, string(rec.Session),
		rec.ActorID, rec.ActorName, rec.ActorGrade, rec.Note,
		rec.StartTime, rec.EndTime, duration,
		rec.PrevHash, rec.Hash, string(rec.Status), rec.RefRecordID,
		rec.Location, rec.Category, rec.Subcategory,
	}
}

func fromRow(row []string) (ledger.Record, error) {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	var duration int
	if v := field(11); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ledger.Record{}, fmt.Errorf("parse duration_minutes %q for record %s: %w", v, field(0), err)
		}
		duration = n
	}

	return ledger.Record{
		RecordID:    field(0),
		ServerTS:    field(1),
		Kind:        ledger.Kind(field(2)),
		Date:        field(3),
		Session:     ledger.Session(field(4)),
		ActorID:     field(5),
		ActorName:   field(6),
		ActorGrade:  field(7),
		Note:        field(8),
		StartTime:   field(9),
		EndTime:     field(10),
		DurationMin: duration,
		PrevHash:    field(12),
		Hash:        field(13),
		Status:      ledger.Status(field(14)),
		RefRecordID: field(15),
		Location:    field(16),
		Category:    field(17),
		Subcategory: field(18),
	}, nil
}
