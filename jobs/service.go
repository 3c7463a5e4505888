package jobs

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AntonAveryan/careermate/backend"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/session"
)

// ErrNoCareerFields means the backend has no career fields on the user's
// profile yet; a CV has to be uploaded and analyzed first.
var ErrNoCareerFields = stderrors.New("no career fields on profile")

type searchResponse struct {
	CareerFieldSearch struct {
		Jobs []Job `json:"jobs"`
	} `json:"career_field_search"`
	SkillsSearch struct {
		Jobs []Job `json:"jobs"`
	} `json:"skills_search"`
}

// Service fetches job listings. The bearer token is optional; when signed
// in, the backend searches against the user's analyzed career fields.
type Service struct {
	session *session.Manager
	api     *backend.Client
	logger  zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a jobs Service.
func NewService(sess *session.Manager, api *backend.Client, options ...Option) (*Service, error) {
	if sess == nil {
		return nil, errors.New("[jobs.NewService] session manager is required")
	}
	if api == nil {
		return nil, errors.New("[jobs.NewService] backend client is required")
	}
	s := &Service{
		session: sess,
		api:     api,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Search fetches listings for a city, merging the career-field and skills
// result sets with URN de-duplication. Career-field results win on a
// duplicate URN.
func (s *Service) Search(ctx context.Context, city string, maxPages int) ([]Job, error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "[Search] city is required")
	}
	if maxPages < 1 {
		maxPages = 1
	}

	query := url.Values{}
	query.Set("city", city)
	query.Set("max_pages", strconv.Itoa(maxPages))

	var resp searchResponse
	if err := s.api.GetJSON(ctx, backend.RouteScrapeJobs, s.session.AccessToken(), query, &resp); err != nil {
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			return nil, errors.Wrap(err, "[Search]")
		}
		if apiErr.Status == http.StatusNotFound && strings.Contains(apiErr.Detail, "career fields") {
			return nil, apperrors.Wrapf(ErrNoCareerFields, "[Search] %s", apiErr.Detail)
		}
		return nil, apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "[Search] %s", apiErr.Detail)
	}

	return mergeByURN(resp.CareerFieldSearch.Jobs, resp.SkillsSearch.Jobs), nil
}

func mergeByURN(primary, secondary []Job) []Job {
	merged := make([]Job, 0, len(primary)+len(secondary))
	seen := make(map[string]struct{}, len(primary))
	for _, job := range primary {
		merged = append(merged, job)
		seen[job.URN] = struct{}{}
	}
	for _, job := range secondary {
		if _, ok := seen[job.URN]; ok {
			continue
		}
		merged = append(merged, job)
		seen[job.URN] = struct{}{}
	}
	return merged
}
