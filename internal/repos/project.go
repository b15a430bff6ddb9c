package repos

import (
	"context"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

// DefaultSubjects seeds a new user's project list.
var DefaultSubjects = []string{"国語", "数学", "英語", "理科", "社会"}

type ProjectRepo interface {
	GetByUserID(ctx context.Context, userID string) []types.Project
	GetByID(ctx context.Context, id string) (*types.Project, bool)
	CreateProject(ctx context.Context, userID, name string) (types.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
	InitializeDefaultProjects(ctx context.Context, userID string) error
}

type projectRepo struct {
	engine *Engine[types.Project]
	log    *logger.Logger
}

func NewProjectRepo(deps Deps) ProjectRepo {
	repoLog := deps.Log.With("repo", "ProjectRepo")
	engine := NewEngine(EngineConfig{
		Table:    "project",
		LocalKey: localKeyProjects,
	}, deps, projectMapper)
	return &projectRepo{engine: engine, log: repoLog}
}

// GetByUserID lists projects and restores the unique-name invariant on every
// read: duplicate-named rows (typically from a default-seeding race) are
// pruned, keeping the earliest-created row.
func (r *projectRepo) GetByUserID(ctx context.Context, userID string) []types.Project {
	projects := r.engine.FindAll(ctx, userID)
	return r.pruneDuplicates(ctx, projects)
}

func (r *projectRepo) pruneDuplicates(ctx context.Context, projects []types.Project) []types.Project {
	seen := map[string]types.Project{}
	order := []string{}
	doomed := []types.Project{}
	for _, p := range projects {
		kept, ok := seen[p.Name]
		if !ok {
			seen[p.Name] = p
			order = append(order, p.Name)
			continue
		}
		if p.CreatedAt < kept.CreatedAt {
			doomed = append(doomed, kept)
			seen[p.Name] = p
		} else {
			doomed = append(doomed, p)
		}
	}
	for _, p := range doomed {
		r.log.Info("Pruning duplicate project", "name", p.Name, "id", p.ID)
		if _, err := r.engine.Delete(ctx, p.ID); err != nil {
			r.log.Warn("Failed to prune duplicate project", "id", p.ID, "error", err)
		}
	}
	out := make([]types.Project, 0, len(order))
	for _, name := range order {
		out = append(out, seen[name])
	}
	return out
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*types.Project, bool) {
	p, ok := r.engine.FindByID(ctx, id)
	if !ok {
		return nil, false
	}
	return &p, true
}

func (r *projectRepo) CreateProject(ctx context.Context, userID, name string) (types.Project, error) {
	return r.engine.Create(ctx, map[string]any{
		"userId": userID,
		"name":   name,
	})
}

func (r *projectRepo) DeleteProject(ctx context.Context, id string) (bool, error) {
	return r.engine.Delete(ctx, id)
}

// InitializeDefaultProjects seeds the fixed subject list, skipping names the
// user already has.
func (r *projectRepo) InitializeDefaultProjects(ctx context.Context, userID string) error {
	existing := r.GetByUserID(ctx, userID)
	have := map[string]bool{}
	for _, p := range existing {
		have[p.Name] = true
	}
	for _, name := range DefaultSubjects {
		if have[name] {
			continue
		}
		if _, err := r.CreateProject(ctx, userID, name); err != nil {
			return err
		}
	}
	return nil
}
