// Package chat talks to the CV analysis and AI career chat endpoints. The
// analysis/LLM service behind them is opaque; this package only moves
// requests and responses.
package chat

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AntonAveryan/careermate/backend"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/session"
)

// Extraction is the result of uploading a CV to the text-extraction
// endpoint.
type Extraction struct {
	Filename       string   `json:"filename"`
	Pages          int      `json:"pages"`
	Characters     int      `json:"characters"`
	Text           string   `json:"text,omitempty"`
	CareerFields   []string `json:"career_fields,omitempty"`
	OverallSummary string   `json:"overall_summary,omitempty"`
	SavedToDB      bool     `json:"saved_to_db,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Message is one entry in the chat history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Service is the chat and CV-upload client.
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

// NewService creates a chat Service.
func NewService(sess *session.Manager, api *backend.Client, options ...Option) (*Service, error) {
	if sess == nil {
		return nil, errors.New("[chat.NewService] session manager is required")
	}
	if api == nil {
		return nil, errors.New("[chat.NewService] backend client is required")
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

// UploadCV posts a PDF for text extraction and career-field analysis. The
// bearer token is optional: anonymous uploads are analyzed but the result
// is not saved to the user's profile.
func (s *Service) UploadCV(ctx context.Context, path string) (*Extraction, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "[UploadCV] %s is not a pdf", filepath.Base(path))
	}

	var out Extraction
	if err := s.api.PostFile(ctx, backend.RouteExtractText, s.session.AccessToken(), "file", path, &out); err != nil {
		return nil, classify(err, "[UploadCV]")
	}
	if out.Error != "" {
		s.logger.Warn().Str("filename", out.Filename).Str("error", out.Error).Msg("extraction reported a problem")
	}
	return &out, nil
}

// Send posts one chat message and returns the assistant's answer.
func (s *Service) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.Wrapf(apperrors.ErrValidation, "[Send] message is empty")
	}
	token := s.session.AccessToken()
	if token == "" {
		return "", apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Send] sign in to chat")
	}

	var out struct {
		Answer string `json:"answer"`
	}
	payload := map[string]string{"message": message}
	if err := s.api.PostJSON(ctx, backend.RouteCareerChat, token, payload, &out); err != nil {
		return "", classify(err, "[Send]")
	}
	return out.Answer, nil
}

// History returns the stored conversation in order.
func (s *Service) History(ctx context.Context) ([]Message, error) {
	token := s.session.AccessToken()
	if token == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[History] sign in to view chat history")
	}

	var history []Message
	if err := s.api.GetJSON(ctx, backend.RouteChatHistory, token, nil, &history); err != nil {
		return nil, classify(err, "[History]")
	}
	return history, nil
}

// ClearHistory deletes the stored conversation.
func (s *Service) ClearHistory(ctx context.Context) error {
	token := s.session.AccessToken()
	if token == "" {
		return apperrors.Wrapf(apperrors.ErrUnauthenticated, "[ClearHistory] sign in first")
	}

	status, err := s.api.Delete(ctx, backend.RouteChatHistory, token)
	if err != nil {
		return errors.Wrap(err, "[ClearHistory]")
	}
	if status == http.StatusUnauthorized {
		return apperrors.Wrapf(apperrors.ErrUnauthenticated, "[ClearHistory] backend returned %d", status)
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "[ClearHistory] backend returned %d", status)
	}
	return nil
}

// classify maps backend failures onto the client error taxonomy.
func classify(err error, op string) error {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return errors.Wrap(err, op)
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return apperrors.Wrapf(apperrors.ErrUnauthenticated, "%s %s", op, apiErr.Detail)
	case apiErr.Status >= http.StatusInternalServerError:
		return apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "%s %s", op, apiErr.Detail)
	default:
		return apperrors.Wrapf(apperrors.ErrValidation, "%s %s", op, apiErr.Detail)
	}
}
