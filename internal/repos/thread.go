package repos

import (
	"context"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type ThreadRepo interface {
	GetByProjectID(ctx context.Context, projectID string) []types.Thread
	GetByUserIDAndProjectID(ctx context.Context, userID, projectID string) []types.Thread
	GetByID(ctx context.Context, id string) (*types.Thread, bool)
	CreateThread(ctx context.Context, userID, projectID, title string) (types.Thread, error)
	UpdateThread(ctx context.Context, id string, patch map[string]any) (*types.Thread, error)
	DeleteThread(ctx context.Context, id string) (bool, error)
}

type threadRepo struct {
	engine   *Engine[types.Thread]
	messages *Engine[types.Message]
	log      *logger.Logger
}

func NewThreadRepo(deps Deps) ThreadRepo {
	repoLog := deps.Log.With("repo", "ThreadRepo")
	return &threadRepo{
		engine:   NewEngine(EngineConfig{Table: "thread", LocalKey: localKeyThreads}, deps, threadMapper),
		messages: NewEngine(EngineConfig{Table: "message", LocalKey: localKeyMessages}, deps, messageMapper),
		log:      repoLog,
	}
}

func (r *threadRepo) GetByProjectID(ctx context.Context, projectID string) []types.Thread {
	return r.engine.FindWhere(ctx, "", map[string]any{"projectId": projectID}, "updatedAt", false)
}

func (r *threadRepo) GetByUserIDAndProjectID(ctx context.Context, userID, projectID string) []types.Thread {
	return r.engine.FindWhere(ctx, userID, map[string]any{"projectId": projectID}, "updatedAt", false)
}

func (r *threadRepo) GetByID(ctx context.Context, id string) (*types.Thread, bool) {
	t, ok := r.engine.FindByID(ctx, id)
	if !ok {
		return nil, false
	}
	return &t, true
}

// CreateThread is remote-first: child messages will reference this thread by
// id, so when the owner and project ids are remote-shaped the insert goes to
// the remote store even if the session probe alone would route locally.
func (r *threadRepo) CreateThread(ctx context.Context, userID, projectID, title string) (types.Thread, error) {
	if title == "" {
		title = "New Chat"
	}
	patch := map[string]any{
		"userId":    userID,
		"projectId": projectID,
		"title":     title,
	}
	return r.engine.CreatePreferRemote(ctx, patch, userID, projectID)
}

func (r *threadRepo) UpdateThread(ctx context.Context, id string, patch map[string]any) (*types.Thread, error) {
	return r.engine.Update(ctx, id, patch)
}

// DeleteThread relies on the remote cascade for child messages but must
// replicate it by hand in the local store, which has no foreign-key engine.
func (r *threadRepo) DeleteThread(ctx context.Context, id string) (bool, error) {
	existed, err := r.engine.Delete(ctx, id)
	msgs := r.messages.LocalAll()
	kept := msgs[:0]
	dropped := false
	for _, m := range msgs {
		if m.ThreadID == id {
			dropped = true
			continue
		}
		kept = append(kept, m)
	}
	if dropped {
		r.messages.WriteLocalAll(kept)
	}
	return existed, err
}
