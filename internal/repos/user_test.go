package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
)

func TestUserRepo_NoSessionMintsStableLocalIdentity(t *testing.T) {
	repo := NewUserRepo(newLocalDeps(), time.Second)
	first := repo.CurrentUser(context.Background())
	if !ident.IsRemoteID(first.ID) || first.CreatedAt == "" {
		t.Fatalf("expected minted identity, got %+v", first)
	}
	second := repo.CurrentUser(context.Background())
	if second.ID != first.ID {
		t.Fatalf("expected stable identity across calls, got %q then %q", first.ID, second.ID)
	}
}

func TestUserRepo_SessionSubjectWinsAndIsCached(t *testing.T) {
	deps, _, session := newRemoteDeps(testOwner)
	session.sess.Email = "tutor@example.com"
	repo := NewUserRepo(deps, time.Second)

	user := repo.CurrentUser(context.Background())
	if user.ID != testOwner || user.Email != "tutor@example.com" {
		t.Fatalf("expected session subject, got %+v", user)
	}
	if user.CreatedAt == "" {
		t.Fatalf("expected createdAt stamped on first sight")
	}

	again := repo.CurrentUser(context.Background())
	if again.CreatedAt != user.CreatedAt {
		t.Fatalf("expected createdAt preserved from cache, got %q then %q", user.CreatedAt, again.CreatedAt)
	}
}

func TestUserRepo_ProbeFailureServesCachedUser(t *testing.T) {
	deps, _, session := newRemoteDeps(testOwner)
	repo := NewUserRepo(deps, time.Second)
	cached := repo.CurrentUser(context.Background())

	session.sess = nil
	session.err = errors.New("auth endpoint down")
	user := repo.CurrentUser(context.Background())
	if user.ID != cached.ID {
		t.Fatalf("expected cached user on probe failure, got %+v", user)
	}
}

func TestUserRepo_ProbeTimeoutIsBounded(t *testing.T) {
	deps := newLocalDeps()
	deps.Session = slowProbe{}
	repo := NewUserRepo(deps, 50*time.Millisecond)

	start := time.Now()
	user := repo.CurrentUser(context.Background())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected bounded probe, took %v", elapsed)
	}
	if user.ID == "" {
		t.Fatalf("expected fallback identity, got %+v", user)
	}
}

// slowProbe blocks until the caller's context gives up.
type slowProbe struct{}

func (slowProbe) Session(ctx context.Context) (*remote.Session, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
