package repos

import (
	"context"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type UserRepo interface {
	CurrentUser(ctx context.Context) types.User
}

type userRepo struct {
	engine       *Engine[types.User]
	deps         Deps
	probeTimeout time.Duration
	log          *logger.Logger
}

// NewUserRepo resolves the operating user. probeTimeout bounds the session
// probe so a hung remote endpoint cannot stall startup; past it the repo
// serves the locally cached user.
func NewUserRepo(deps Deps, probeTimeout time.Duration) UserRepo {
	if probeTimeout <= 0 {
		probeTimeout = 6 * time.Second
	}
	repoLog := deps.Log.With("repo", "UserRepo")
	return &userRepo{
		engine:       NewEngine(EngineConfig{Table: "app_user", LocalKey: localKeyUsers, KeepID: true}, deps, userMapper),
		deps:         deps,
		probeTimeout: probeTimeout,
		log:          repoLog,
	}
}

// CurrentUser never fails: remote session subject when available, otherwise
// the locally cached user, otherwise a freshly minted local identity.
func (r *userRepo) CurrentUser(ctx context.Context) types.User {
	if r.deps.Session != nil {
		probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
		sess, err := r.deps.Session.Session(probeCtx)
		cancel()
		if err == nil && sess != nil {
			u := types.User{ID: sess.UserID, Email: sess.Email}
			for _, cached := range r.engine.LocalAll() {
				if cached.ID == u.ID {
					u.CreatedAt = cached.CreatedAt
					break
				}
			}
			if u.CreatedAt == "" {
				u.CreatedAt = r.engine.stamp()
			}
			r.engine.Mirror(u)
			return u
		}
		if err != nil {
			r.log.Warn("Session probe failed, using locally cached user", "error", err)
		}
	}
	if cached := r.engine.LocalAll(); len(cached) > 0 {
		return cached[0]
	}
	u := types.User{ID: ident.NewID(), CreatedAt: r.engine.stamp()}
	r.engine.Mirror(u)
	return u
}
