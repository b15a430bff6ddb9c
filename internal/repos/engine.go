package repos

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/localstore"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

// Local collection keys, one fixed key per entity table.
const (
	localKeyProjects      = "tutordesk.projects"
	localKeyThreads       = "tutordesk.threads"
	localKeyMessages      = "tutordesk.messages"
	localKeyHomework      = "tutordesk.homework"
	localKeyTestSets      = "tutordesk.testSets"
	localKeyTestScores    = "tutordesk.testScores"
	localKeyLessonRecords = "tutordesk.lessonRecords"
	localKeyUsers         = "tutordesk.user"
)

// Deps bundles the collaborators every repository shares. Remote may be nil:
// an unconfigured remote store routes everything local. Now is injectable
// for tests and defaults to time.Now.
type Deps struct {
	Remote  remote.Rows
	Session remote.SessionProbe
	Local   *localstore.Store
	Log     *logger.Logger
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

type EngineConfig struct {
	Table       string
	LocalKey    string
	OwnerColumn string
	// KeepID marks entity types whose remote inserts carry a client-chosen
	// primary key (the user row keyed by the auth subject). Everyone else
	// gets their id stripped so the remote store assigns it.
	KeepID bool
}

// Engine is the entity-agnostic CRUD core. Every operation decides per call
// between two states: REMOTE-CAPABLE (remote configured, live session, and
// remote-shaped ids for id-bearing lookups) and LOCAL-ONLY. Remote successes
// are mirrored into the local collection (read-repair); remote failures are
// logged, absorbed, and answered from the local collection so the
// user-visible action still completes.
type Engine[T types.Record] struct {
	cfg    EngineConfig
	deps   Deps
	mapper Mapper[T]
	log    *logger.Logger
}

func NewEngine[T types.Record](cfg EngineConfig, deps Deps, mapper Mapper[T]) *Engine[T] {
	if cfg.OwnerColumn == "" {
		cfg.OwnerColumn = "user_id"
	}
	return &Engine[T]{
		cfg:    cfg,
		deps:   deps,
		mapper: mapper,
		log:    deps.Log.With("table", cfg.Table),
	}
}

func (e *Engine[T]) stamp() string {
	return e.deps.now().UTC().Format(time.RFC3339Nano)
}

// remoteCapable is the per-call two-state check. A non-conforming id short-
// circuits straight to LOCAL-ONLY without probing the session, because the
// remote store would reject the lookup anyway.
func (e *Engine[T]) remoteCapable(ctx context.Context, ids ...string) bool {
	if e.deps.Remote == nil || e.deps.Session == nil {
		return false
	}
	for _, id := range ids {
		if !ident.IsRemoteID(id) {
			return false
		}
	}
	sess, err := e.deps.Session.Session(ctx)
	return err == nil && sess != nil
}

func (e *Engine[T]) readLocal() []T {
	return localstore.ReadCollection[T](e.deps.Local, e.cfg.LocalKey)
}

func (e *Engine[T]) writeLocal(items []T) {
	if err := localstore.WriteCollection(e.deps.Local, e.cfg.LocalKey, items); err != nil {
		e.log.Warn("Failed to persist local collection", "error", err)
	}
}

// LocalAll exposes the raw local collection for multi-row operations that
// need read-modify-write semantics beyond single-entity CRUD.
func (e *Engine[T]) LocalAll() []T { return e.readLocal() }

// WriteLocalAll replaces the local collection wholesale.
func (e *Engine[T]) WriteLocalAll(items []T) { e.writeLocal(items) }

// Mirror replaces-or-inserts one entity in the local collection. Repeated
// mirroring of the same id stays idempotent: at most one copy survives.
func (e *Engine[T]) Mirror(item T) {
	items := e.readLocal()
	for i := range items {
		if items[i].RecordID() == item.RecordID() {
			items[i] = item
			e.writeLocal(items)
			return
		}
	}
	e.writeLocal(append(items, item))
}

func (e *Engine[T]) mirrorAll(incoming []T) {
	items := e.readLocal()
	for _, item := range incoming {
		replaced := false
		for i := range items {
			if items[i].RecordID() == item.RecordID() {
				items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			items = append(items, item)
		}
	}
	e.writeLocal(items)
}

// DropLocal removes an id from the local collection, reporting whether it
// was present.
func (e *Engine[T]) DropLocal(id string) bool {
	items := e.readLocal()
	kept := items[:0]
	existed := false
	for _, item := range items {
		if item.RecordID() == id {
			existed = true
			continue
		}
		kept = append(kept, item)
	}
	if existed {
		e.writeLocal(kept)
	}
	return existed
}

// FindAll returns the owner's entities ordered by creation time ascending.
func (e *Engine[T]) FindAll(ctx context.Context, ownerID string) []T {
	if e.remoteCapable(ctx) {
		rows, err := e.deps.Remote.Select(ctx, e.cfg.Table,
			[]remote.Cond{remote.Eq(e.cfg.OwnerColumn, ownerID)},
			&remote.Order{Column: "created_at", Ascending: true})
		if err == nil {
			out := make([]T, 0, len(rows))
			for _, row := range rows {
				out = append(out, e.mapper.FromRow(row))
			}
			e.mirrorAll(out)
			return out
		}
		e.log.Warn("Remote query failed, serving local collection", "error", err)
	}
	return e.localByOwner(ownerID)
}

func (e *Engine[T]) localByOwner(ownerID string) []T {
	out := []T{}
	for _, item := range e.readLocal() {
		if item.RecordOwner() == ownerID {
			out = append(out, item)
		}
	}
	// RFC 3339 sorts lexicographically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordCreatedAt() < out[j].RecordCreatedAt()
	})
	return out
}

// FindByID treats remote "not found" and remote errors identically: both
// fall back to the local collection.
func (e *Engine[T]) FindByID(ctx context.Context, id string) (T, bool) {
	var zero T
	if id == "" {
		return zero, false
	}
	if e.remoteCapable(ctx, id) {
		row, err := e.deps.Remote.SelectOne(ctx, e.cfg.Table, []remote.Cond{remote.Eq("id", id)})
		if err == nil {
			item := e.mapper.FromRow(row)
			e.Mirror(item)
			return item, true
		}
		if !errors.Is(err, remote.ErrNotFound) {
			e.log.Warn("Remote lookup failed, trying local collection", "id", id, "error", err)
		}
	}
	for _, item := range e.readLocal() {
		if item.RecordID() == id {
			return item, true
		}
	}
	return zero, false
}

// prepareCreate stamps createdAt/updatedAt only when absent, so idempotent
// retries keep their original timestamps.
func (e *Engine[T]) prepareCreate(patch map[string]any) map[string]any {
	patch = clonePatch(patch)
	now := e.stamp()
	if s, _ := patch["createdAt"].(string); s == "" {
		patch["createdAt"] = now
	}
	if s, _ := patch["updatedAt"].(string); s == "" {
		patch["updatedAt"] = now
	}
	return patch
}

// Create always returns a usable entity: the remote path is attempted when
// capable, and any remote failure falls through to the local create.
func (e *Engine[T]) Create(ctx context.Context, patch map[string]any) (T, error) {
	patch = e.prepareCreate(patch)
	if e.remoteCapable(ctx) {
		if item, err := e.createRemote(ctx, patch); err == nil {
			return item, nil
		} else {
			e.log.Warn("Remote insert failed, creating locally", "error", err)
		}
	}
	return e.createLocal(patch), nil
}

// CreatePreferRemote attempts the remote insert whenever the given ids are
// remote-shaped, independent of the full session capability check. Used
// where child rows will reference the new row remotely (threads before
// messages), so the parent must exist remotely first. On failure it falls
// back to the plain local create.
func (e *Engine[T]) CreatePreferRemote(ctx context.Context, patch map[string]any, requiredIDs ...string) (T, error) {
	patch = e.prepareCreate(patch)
	if e.deps.Remote != nil && allRemoteIDs(requiredIDs) {
		if item, err := e.createRemote(ctx, patch); err == nil {
			return item, nil
		} else {
			e.log.Warn("Remote-first insert failed, creating locally", "error", err)
		}
	}
	return e.createLocal(patch), nil
}

func allRemoteIDs(ids []string) bool {
	for _, id := range ids {
		if !ident.IsRemoteID(id) {
			return false
		}
	}
	return len(ids) > 0
}

func (e *Engine[T]) createRemote(ctx context.Context, patch map[string]any) (T, error) {
	row := e.mapper.ToRow(patch)
	if !e.cfg.KeepID {
		delete(row, "id")
	}
	canonical, err := e.deps.Remote.Insert(ctx, e.cfg.Table, row)
	if err != nil {
		var zero T
		return zero, err
	}
	item := e.mapper.FromRow(canonical)
	e.Mirror(item)
	return item, nil
}

// CreateLocal is the LOCAL-ONLY create path, also used directly by
// multi-row operations that already decided against the remote store.
func (e *Engine[T]) CreateLocal(patch map[string]any) T {
	return e.createLocal(e.prepareCreate(patch))
}

func (e *Engine[T]) createLocal(patch map[string]any) T {
	if s, _ := patch["id"].(string); s == "" {
		patch["id"] = ident.NewID()
	}
	item := e.mapper.FromRow(e.mapper.ToRow(patch))
	e.Mirror(item)
	return item
}

// Update stamps updatedAt, patches the row, and mirrors the result locally
// (replacing if present, inserting if the local copy never existed).
// Returns nil when no matching row exists in either store.
func (e *Engine[T]) Update(ctx context.Context, id string, patch map[string]any) (*T, error) {
	patch = clonePatch(patch)
	delete(patch, "id")
	patch["updatedAt"] = e.stamp()
	if e.remoteCapable(ctx, id) {
		canonical, err := e.deps.Remote.Update(ctx, e.cfg.Table, id, e.mapper.ToRow(patch))
		if err == nil {
			item := e.mapper.FromRow(canonical)
			e.Mirror(item)
			return &item, nil
		}
		if !errors.Is(err, remote.ErrNotFound) {
			e.log.Warn("Remote update failed, updating locally", "id", id, "error", err)
		}
	}
	return e.UpdateLocal(id, patch), nil
}

// UpdateLocal merges the patch over the locally cached entity.
func (e *Engine[T]) UpdateLocal(id string, patch map[string]any) *T {
	items := e.readLocal()
	for i := range items {
		if items[i].RecordID() != id {
			continue
		}
		merged := patchOf(items[i])
		for k, v := range patch {
			merged[k] = v
		}
		item := e.mapper.FromRow(e.mapper.ToRow(merged))
		items[i] = item
		e.writeLocal(items)
		return &item
	}
	return nil
}

// Delete removes the row remotely when capable, then unconditionally drops
// the local mirror so the cache can never resurrect a remotely deleted row.
// The returned flag reflects whichever store performed the authoritative
// delete.
func (e *Engine[T]) Delete(ctx context.Context, id string) (bool, error) {
	if e.remoteCapable(ctx, id) {
		affected, err := e.deps.Remote.Delete(ctx, e.cfg.Table, []remote.Cond{remote.Eq("id", id)})
		if err == nil {
			e.DropLocal(id)
			return affected > 0, nil
		}
		e.log.Warn("Remote delete failed, deleting locally", "id", id, "error", err)
	}
	return e.DropLocal(id), nil
}

// FindWhere filters by equality on camelCase fields and orders by a
// camelCase field, translating both through the mapper so column renames
// stay in one place. ownerID may be empty for transitively owned entities.
func (e *Engine[T]) FindWhere(ctx context.Context, ownerID string, filters map[string]any, orderField string, ascending bool) []T {
	if e.remoteCapable(ctx) {
		conds := []remote.Cond{}
		if ownerID != "" {
			conds = append(conds, remote.Eq(e.cfg.OwnerColumn, ownerID))
		}
		for col, v := range e.mapper.ToRow(filters) {
			conds = append(conds, remote.Eq(col, v))
		}
		var order *remote.Order
		if orderField != "" {
			order = &remote.Order{Column: e.columnFor(orderField), Ascending: ascending}
		}
		rows, err := e.deps.Remote.Select(ctx, e.cfg.Table, conds, order)
		if err == nil {
			out := make([]T, 0, len(rows))
			for _, row := range rows {
				out = append(out, e.mapper.FromRow(row))
			}
			e.mirrorAll(out)
			return out
		}
		e.log.Warn("Remote filtered query failed, serving local collection", "error", err)
	}
	return e.localWhere(ownerID, filters, orderField, ascending)
}

func (e *Engine[T]) localWhere(ownerID string, filters map[string]any, orderField string, ascending bool) []T {
	want := e.mapper.ToRow(filters)
	out := []T{}
	keys := []string{}
	for _, item := range e.readLocal() {
		if ownerID != "" && item.RecordOwner() != ownerID {
			continue
		}
		row := e.mapper.ToRow(patchOf(item))
		match := true
		for col, v := range want {
			if rowString(row, col) != stringify(v) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		out = append(out, item)
		keys = append(keys, stringify(patchOf(item)[orderField]))
	}
	if orderField == "" {
		return out
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if ascending {
			return keys[idx[i]] < keys[idx[j]]
		}
		return keys[idx[i]] > keys[idx[j]]
	})
	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// columnFor resolves a camelCase field to its remote column by probing the
// mapper, so rename knowledge never leaks out of the mapper.
func (e *Engine[T]) columnFor(field string) string {
	for col := range e.mapper.ToRow(map[string]any{field: ""}) {
		return col
	}
	return field
}
