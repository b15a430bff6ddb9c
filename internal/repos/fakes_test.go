package repos

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/localstore"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
)

var errRemoteDown = errors.New("remote backend unavailable")

// fakeRows is an in-memory remote.Rows with per-table failure switches.
type fakeRows struct {
	mu         sync.Mutex
	tables     map[string][]remote.Row
	failAll    bool
	failTables map[string]bool
}

func newFakeRows() *fakeRows {
	return &fakeRows{tables: map[string][]remote.Row{}, failTables: map[string]bool{}}
}

func (f *fakeRows) failing(table string) bool {
	return f.failAll || f.failTables[table]
}

func (f *fakeRows) rowsIn(table string) []remote.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.Row, 0, len(f.tables[table]))
	for _, row := range f.tables[table] {
		out = append(out, cloneRow(row))
	}
	return out
}

func cloneRow(row remote.Row) remote.Row {
	out := make(remote.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func matchCond(row remote.Row, c remote.Cond) bool {
	column := strings.TrimSuffix(c.Column, "::text")
	have := rowString(row, column)
	switch c.Op {
	case remote.OpEq:
		return have == stringify(c.Value)
	case remote.OpIn:
		values, _ := c.Value.([]string)
		for _, v := range values {
			if have == v {
				return true
			}
		}
		return false
	case remote.OpILike:
		needle := strings.ToLower(strings.Trim(stringify(c.Value), "%"))
		return strings.Contains(strings.ToLower(have), needle)
	default:
		return false
	}
}

func matchAll(row remote.Row, conds []remote.Cond) bool {
	for _, c := range conds {
		if !matchCond(row, c) {
			return false
		}
	}
	return true
}

func (f *fakeRows) Select(ctx context.Context, table string, conds []remote.Cond, order *remote.Order) ([]remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing(table) {
		return nil, errRemoteDown
	}
	out := []remote.Row{}
	for _, row := range f.tables[table] {
		if matchAll(row, conds) {
			out = append(out, cloneRow(row))
		}
	}
	if order != nil {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := rowString(out[i], order.Column), rowString(out[j], order.Column)
			if order.Ascending {
				return a < b
			}
			return a > b
		})
	}
	return out, nil
}

func (f *fakeRows) SelectOne(ctx context.Context, table string, conds []remote.Cond) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing(table) {
		return nil, errRemoteDown
	}
	for _, row := range f.tables[table] {
		if matchAll(row, conds) {
			return cloneRow(row), nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *fakeRows) Insert(ctx context.Context, table string, row remote.Row) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing(table) {
		return nil, errRemoteDown
	}
	stored := cloneRow(row)
	if rowString(stored, "id") == "" {
		stored["id"] = ident.NewID()
	}
	f.tables[table] = append(f.tables[table], stored)
	return cloneRow(stored), nil
}

func (f *fakeRows) Update(ctx context.Context, table string, id string, patch remote.Row) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing(table) {
		return nil, errRemoteDown
	}
	for i, row := range f.tables[table] {
		if rowString(row, "id") == id {
			merged := cloneRow(row)
			for k, v := range patch {
				merged[k] = v
			}
			f.tables[table][i] = merged
			return cloneRow(merged), nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *fakeRows) Delete(ctx context.Context, table string, conds []remote.Cond) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing(table) {
		return 0, errRemoteDown
	}
	kept := f.tables[table][:0]
	var removed int64
	for _, row := range f.tables[table] {
		if matchAll(row, conds) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return removed, nil
}

// fakeSession is a SessionProbe with a call counter.
type fakeSession struct {
	mu    sync.Mutex
	sess  *remote.Session
	err   error
	calls int
}

func (s *fakeSession) Session(ctx context.Context) (*remote.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.sess, s.err
}

func (s *fakeSession) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stepClock hands out strictly increasing timestamps.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newLocalDeps() Deps {
	return Deps{
		Local: localstore.NewStore(localstore.NewMemoryKV(), logger.NewNop()),
		Log:   logger.NewNop(),
		Now:   newStepClock().Now,
	}
}

func newRemoteDeps(userID string) (Deps, *fakeRows, *fakeSession) {
	rows := newFakeRows()
	session := &fakeSession{sess: &remote.Session{UserID: userID}}
	deps := Deps{
		Remote:  rows,
		Session: session,
		Local:   localstore.NewStore(localstore.NewMemoryKV(), logger.NewNop()),
		Log:     logger.NewNop(),
		Now:     newStepClock().Now,
	}
	return deps, rows, session
}
