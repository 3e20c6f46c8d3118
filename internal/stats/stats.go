// Package stats derives per-member activity totals from the ledger for the
// admin dashboard. Read-only: it never writes records.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/counterworks/counterlog/internal/ledger"
	"github.com/counterworks/counterlog/internal/roster"
)

// recordReader is the slice of the store this service needs.
type recordReader interface {
	ReadAll(ctx context.Context) ([]ledger.Record, error)
}

// memberLister is the slice of the directory this service needs.
type memberLister interface {
	List(ctx context.Context) ([]roster.Member, error)
}

// Totals is one member's aggregated activity. Assists counts completed
// sessions (end records); open sessions are not included.
type Totals struct {
	ActorID       string `json:"actor_id"`
	Name          string `json:"name"`
	Grade         string `json:"grade"`
	Attendance    int    `json:"attendance"`
	Assists       int    `json:"assists"`
	AssistMinutes int    `json:"assist_minutes"`
}

// Service computes statistics over the full record set.
type Service struct {
	store   recordReader
	members memberLister
}

// New creates a stats Service.
func New(store recordReader, members memberLister) *Service {
	return &Service{store: store, members: members}
}

// PerMember returns totals for every active member, sorted by name. Voided
// records are excluded.
func (s *Service) PerMember(ctx context.Context) ([]Totals, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	recs, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	byID := make(map[string]*Totals, len(members))
	out := make([]Totals, 0, len(members))
	for _, m := range members {
		out = append(out, Totals{ActorID: m.ID, Name: m.Name, Grade: m.Grade})
	}
	for i := range out {
		byID[out[i].ActorID] = &out[i]
	}

	for i := range recs {
		rec := &recs[i]
		if rec.Status != ledger.StatusActive {
			continue
		}
		t, ok := byID[rec.ActorID]
		if !ok {
			continue // inactive or removed member; history stays in the ledger
		}
		switch rec.Kind {
		case ledger.KindAttendance:
			t.Attendance++
		case ledger.KindAssistEnd:
			t.Assists++
			t.AssistMinutes += rec.DurationMin
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
