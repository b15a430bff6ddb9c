package attachments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
)

var (
	// ErrNoOwner means neither the remote session nor the local identity
	// could name an owner for the object path.
	ErrNoOwner = errors.New("no owner identity for upload")
	// ErrNoStore means object storage was never configured.
	ErrNoStore = errors.New("object storage is not configured")
)

// UploadResult describes a stored object; Path is the bucket key the caller
// persists on the owning entity.
type UploadResult struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// Service runs the attachment pipeline: sanitize the name, build a
// collision-free key under the owner, upload write-once, and serve reads
// through the signed-URL cache.
type Service struct {
	log           *logger.Logger
	store         remote.ObjectStore
	session       remote.SessionProbe
	fallbackOwner func(ctx context.Context) string
	cache         *URLCache
	now           func() time.Time
}

// NewService wires the pipeline. store may be nil (uploads then fail with
// ErrNoStore); fallbackOwner supplies the local user id when no remote
// session exists.
func NewService(store remote.ObjectStore, session remote.SessionProbe, fallbackOwner func(ctx context.Context) string, urlTTL time.Duration, baseLog *logger.Logger) *Service {
	svc := &Service{
		log:           baseLog.With("service", "Attachments"),
		store:         store,
		session:       session,
		fallbackOwner: fallbackOwner,
		now:           time.Now,
	}
	if store != nil {
		svc.cache = NewURLCache(store, urlTTL, baseLog)
	}
	return svc
}

// Upload stores data under "<owner>/<scope>/<millis>-<shortid>-<name>". The
// timestamp plus random prefix keeps keys unique even for identical file
// names; the store's no-overwrite precondition backstops that.
func (s *Service) Upload(ctx context.Context, scopeID, fileName string, data []byte) (UploadResult, error) {
	if s.store == nil {
		return UploadResult{}, ErrNoStore
	}
	owner, err := s.owner(ctx)
	if err != nil {
		return UploadResult{}, err
	}
	if scopeID == "" {
		scopeID = "misc"
	}
	name := SanitizeFileName(fileName)
	key := fmt.Sprintf("%s/%s/%d-%s-%s", owner, scopeID, s.now().UnixMilli(), ident.NewID()[:8], name)
	mime := contentTypeForName(name)

	if err := s.store.Upload(ctx, key, data, mime); err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload attachment %q: %w", key, err)
	}
	s.log.Info("Stored attachment", "path", key, "bytes", len(data))
	return UploadResult{Path: key, Name: name, Mime: mime, Size: int64(len(data))}, nil
}

// SignedURL resolves a read URL for a stored object, served from the cache
// while the cached URL has comfortable lifetime left.
func (s *Service) SignedURL(ctx context.Context, path string) (string, error) {
	if s.store == nil {
		return "", ErrNoStore
	}
	return s.cache.Resolve(ctx, path)
}

func (s *Service) Remove(ctx context.Context, path string) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.Remove(ctx, path); err != nil {
		return err
	}
	s.cache.Evict(path)
	return nil
}

// owner prefers the remote session subject so objects land under the same
// id the rows use; a failed probe falls through to the local identity.
func (s *Service) owner(ctx context.Context) (string, error) {
	if s.session != nil {
		if sess, err := s.session.Session(ctx); err == nil && sess != nil && sess.UserID != "" {
			return sess.UserID, nil
		}
	}
	if s.fallbackOwner != nil {
		if id := s.fallbackOwner(ctx); id != "" {
			return id, nil
		}
	}
	return "", ErrNoOwner
}
