package favorites

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AntonAveryan/careermate/backend"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/session"
)

// DefaultSource is recorded on favorites that don't name a job board.
const DefaultSource = "linkedin"

// Synchronizer applies favorite toggles to the local index first and
// reconciles with the backend collection when a session is available.
type Synchronizer struct {
	index   *Index
	session *session.Manager
	api     *backend.Client
	logger  zerolog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the synchronizer's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// NewSynchronizer creates a Synchronizer with its dependencies injected.
func NewSynchronizer(index *Index, sess *session.Manager, api *backend.Client, options ...Option) (*Synchronizer, error) {
	if index == nil {
		return nil, errors.New("[NewSynchronizer] index is required")
	}
	if sess == nil {
		return nil, errors.New("[NewSynchronizer] session manager is required")
	}
	if api == nil {
		return nil, errors.New("[NewSynchronizer] backend client is required")
	}
	s := &Synchronizer{
		index:   index,
		session: sess,
		api:     api,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// createPayload is the POST /favorites body.
type createPayload struct {
	Title     string `json:"title"`
	URN       string `json:"urn"`
	Company   string `json:"company,omitempty"`
	Location  string `json:"location,omitempty"`
	ApplyLink string `json:"apply_link,omitempty"`
	Source    string `json:"source"`
}

// Add inserts the job into the local index synchronously, then pushes it
// to the backend. A remote failure keeps the optimistic local entry in
// place and is reported as ErrSaveFailed so the caller can surface it as a
// background warning; there is no rollback. Without an access token the
// remote call is skipped entirely and the record stays local-only.
func (s *Synchronizer) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.URN == "" {
		return rec, apperrors.Wrapf(apperrors.ErrValidation, "[Add] favorite needs a urn")
	}
	if rec.Title == "" {
		rec.Title = "Unknown title"
	}
	if rec.Source == "" {
		rec.Source = DefaultSource
	}
	rec.RemoteID = nil
	rec.State = StatePendingRemote

	// All local mutation happens before the first network call.
	if err := s.index.Put(rec); err != nil {
		return rec, errors.Wrap(err, "[Add] persist local index")
	}

	token := s.session.AccessToken()
	if token == "" {
		s.logger.Debug().Str("urn", rec.URN).Msg("favorite kept local, not signed in")
		return rec, nil
	}

	payload := createPayload{
		Title:     rec.Title,
		URN:       rec.URN,
		Company:   rec.Company,
		Location:  rec.Location,
		ApplyLink: rec.ApplyLink,
		Source:    rec.Source,
	}
	var created Record
	if err := s.api.PostJSON(ctx, backend.RouteFavorites, token, payload, &created); err != nil {
		s.logger.Warn().Err(err).Str("urn", rec.URN).Msg("favorite not saved remotely")
		return rec, apperrors.Wrapf(apperrors.ErrSaveFailed, "[Add] %s: %v", rec.URN, err)
	}

	rec.RemoteID = created.RemoteID
	rec.State = StateConfirmed
	if err := s.index.Put(rec); err != nil {
		return rec, errors.Wrap(err, "[Add] record remote id")
	}
	return rec, nil
}

// Remove drops a favorite by urn. With no confirmed remote id the removal
// is local-only. Remotely, 204 and 404 both count as removed (the record
// is gone either way); any other status keeps the local entry so the user
// can retry, reported as ErrRemovalFailed.
func (s *Synchronizer) Remove(ctx context.Context, urn string) error {
	records, err := s.index.Load()
	if err != nil {
		return errors.Wrap(err, "[Remove] load index")
	}
	rec, ok := records[urn]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "[Remove] %s is not a favorite", urn)
	}

	if rec.RemoteID == nil {
		return errors.Wrap(s.index.Remove(urn), "[Remove] local-only entry")
	}

	token := s.session.AccessToken()
	if token == "" {
		return apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Remove] sign in to remove synced favorites")
	}

	status, err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", backend.RouteFavorites, *rec.RemoteID), token)
	if err != nil {
		return errors.Wrap(err, "[Remove]")
	}
	switch status {
	case http.StatusNoContent, http.StatusNotFound:
		return errors.Wrap(s.index.Remove(urn), "[Remove] drop local entry")
	default:
		return apperrors.Wrapf(apperrors.ErrRemovalFailed, "[Remove] %s: backend returned %d", urn, status)
	}
}

// RemoveByRemoteID deletes straight by backend id, for entries surfaced by
// List that don't map to a locally cached urn. The idempotent-delete rule
// is the same as Remove's.
func (s *Synchronizer) RemoveByRemoteID(ctx context.Context, id int64) error {
	token := s.session.AccessToken()
	if token == "" {
		return apperrors.Wrapf(apperrors.ErrUnauthenticated, "[RemoveByRemoteID] sign in to remove favorites")
	}

	status, err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", backend.RouteFavorites, id), token)
	if err != nil {
		return errors.Wrap(err, "[RemoveByRemoteID]")
	}
	switch status {
	case http.StatusNoContent, http.StatusNotFound:
		// Drop the matching cache entry too, if we have one.
		records, err := s.index.Load()
		if err != nil {
			return nil
		}
		for urn, rec := range records {
			if rec.RemoteID != nil && *rec.RemoteID == id {
				return errors.Wrap(s.index.Remove(urn), "[RemoveByRemoteID] drop local entry")
			}
		}
		return nil
	default:
		return apperrors.Wrapf(apperrors.ErrRemovalFailed, "[RemoveByRemoteID] %d: backend returned %d", id, status)
	}
}

// List fetches the authoritative remote collection and replaces the local
// index with it. Records without a usable urn are still returned so the
// caller can render them, but they are kept out of the urn-keyed cache and
// cannot be toggled further.
func (s *Synchronizer) List(ctx context.Context) ([]Record, error) {
	token := s.session.AccessToken()
	if token == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[List] sign in to view favorites")
	}

	var remote []Record
	if err := s.api.GetJSON(ctx, backend.RouteFavorites, token, nil, &remote); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[List] %s", apiErr.Detail)
		}
		return nil, errors.Wrap(err, "[List]")
	}

	replacement := make(map[string]Record, len(remote))
	for i := range remote {
		remote[i].State = StateConfirmed
		if remote[i].URN == "" {
			continue
		}
		replacement[remote[i].URN] = remote[i]
	}
	if err := s.index.Replace(replacement); err != nil {
		// Listing still succeeded; the stale cache only affects the next
		// offline view.
		s.logger.Warn().Err(err).Msg("failed to sync favorites cache")
	}
	return remote, nil
}

// Cached returns the locally cached records, sorted by urn, without
// touching the backend.
func (s *Synchronizer) Cached() ([]Record, error) {
	records, err := s.index.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[Cached]")
	}
	list := make([]Record, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].URN < list[j].URN })
	return list, nil
}
