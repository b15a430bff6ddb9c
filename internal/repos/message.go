package repos

import (
	"context"
	"strings"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type MessageRepo interface {
	GetByThreadID(ctx context.Context, threadID string) []types.Message
	CreateMessage(ctx context.Context, msg types.Message) (types.Message, error)
	DeleteMessage(ctx context.Context, id string) (bool, error)
	SearchByContent(ctx context.Context, userID, query string) []types.Message
}

type messageRepo struct {
	engine  *Engine[types.Message]
	threads *Engine[types.Thread]
	deps    Deps
	log     *logger.Logger
}

func NewMessageRepo(deps Deps) MessageRepo {
	repoLog := deps.Log.With("repo", "MessageRepo")
	return &messageRepo{
		engine:  NewEngine(EngineConfig{Table: "message", LocalKey: localKeyMessages}, deps, messageMapper),
		threads: NewEngine(EngineConfig{Table: "thread", LocalKey: localKeyThreads}, deps, threadMapper),
		deps:    deps,
		log:     repoLog,
	}
}

func (r *messageRepo) GetByThreadID(ctx context.Context, threadID string) []types.Message {
	return r.engine.FindWhere(ctx, "", map[string]any{"threadId": threadID}, "createdAt", true)
}

// CreateMessage prefers the remote insert whenever the thread id is
// remote-shaped, so a remote thread never accumulates orphaned local-only
// messages.
func (r *messageRepo) CreateMessage(ctx context.Context, msg types.Message) (types.Message, error) {
	if msg.Role == "" {
		msg.Role = types.RoleUser
	}
	return r.engine.CreatePreferRemote(ctx, patchOf(msg), msg.ThreadID)
}

func (r *messageRepo) DeleteMessage(ctx context.Context, id string) (bool, error) {
	return r.engine.Delete(ctx, id)
}

// SearchByContent matches the query case-insensitively against message
// content and tags. The remote path runs two pattern queries joined through
// the owning threads and merges them; the local path is a linear scan.
// Result ordering is not guaranteed identical between the two paths.
func (r *messageRepo) SearchByContent(ctx context.Context, userID, query string) []types.Message {
	query = strings.TrimSpace(query)
	if query == "" {
		return []types.Message{}
	}
	if r.engine.remoteCapable(ctx) {
		if out, err := r.searchRemote(ctx, userID, query); err == nil {
			return out
		} else {
			r.log.Warn("Remote search failed, scanning local collection", "error", err)
		}
	}
	return r.searchLocal(userID, query)
}

func (r *messageRepo) searchRemote(ctx context.Context, userID, query string) ([]types.Message, error) {
	threadRows, err := r.deps.Remote.Select(ctx, "thread",
		[]remote.Cond{remote.Eq("user_id", userID)}, nil)
	if err != nil {
		return nil, err
	}
	threadIDs := make([]string, 0, len(threadRows))
	for _, row := range threadRows {
		threadIDs = append(threadIDs, rowString(row, "id"))
	}
	if len(threadIDs) == 0 {
		return []types.Message{}, nil
	}

	pattern := "%" + query + "%"
	byContent, err := r.deps.Remote.Select(ctx, "message", []remote.Cond{
		remote.In("thread_id", threadIDs),
		remote.ILike("content", pattern),
	}, &remote.Order{Column: "created_at", Ascending: true})
	if err != nil {
		return nil, err
	}
	// The notes column is jsonb, so pattern-match its text rendering.
	byTags, err := r.deps.Remote.Select(ctx, "message", []remote.Cond{
		remote.In("thread_id", threadIDs),
		remote.ILike("notes::text", pattern),
	}, &remote.Order{Column: "created_at", Ascending: true})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	out := []types.Message{}
	for _, row := range append(byContent, byTags...) {
		m := r.engine.mapper.FromRow(row)
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out, nil
}

func (r *messageRepo) searchLocal(userID, query string) []types.Message {
	owned := map[string]bool{}
	for _, t := range r.threads.LocalAll() {
		if t.UserID == userID {
			owned[t.ID] = true
		}
	}
	needle := strings.ToLower(query)
	out := []types.Message{}
	for _, m := range r.engine.LocalAll() {
		if !owned[m.ThreadID] && m.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Content), needle) || tagsContain(m.Tags, needle) {
			out = append(out, m)
		}
	}
	return out
}

func tagsContain(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
