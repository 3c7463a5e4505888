package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonAveryan/careermate/backend"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
)

func TestGetJSONDecodesErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"detail":"out of tea"}`))
	}))
	defer srv.Close()

	client := backend.New(srv.URL)
	err := client.GetJSON(context.Background(), "/anything", "", nil, nil)
	require.Error(t, err)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTeapot, apiErr.Status)
	require.Equal(t, "out of tea", apiErr.Detail)
}

func TestRequestDecoration(t *testing.T) {
	var gotRequestID, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := backend.New(srv.URL)
	require.NoError(t, client.GetJSON(context.Background(), "/me", "token-1", nil, nil))

	_, err := uuid.Parse(gotRequestID)
	require.NoError(t, err, "X-Request-ID should be a uuid")
	require.Equal(t, "Bearer token-1", gotAuth)
}

func TestUnreachableBackendIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately dead

	client := backend.New(srv.URL)
	err := client.GetJSON(context.Background(), "/me", "", nil, nil)
	require.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
}

func TestDeleteReturnsStatusWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := backend.New(srv.URL)
	status, err := client.Delete(context.Background(), "/favorites/1", "token")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestPostFormContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := backend.New(srv.URL)
	var out struct {
		OK bool `json:"ok"`
	}
	form := map[string][]string{"username": {"alice"}}
	require.NoError(t, client.PostForm(context.Background(), "/login", form, &out))
	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.True(t, out.OK)
}
