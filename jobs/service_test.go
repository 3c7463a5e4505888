package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonAveryan/careermate/backend"
	"github.com/AntonAveryan/careermate/internal/backendtest"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/jobs"
	"github.com/AntonAveryan/careermate/localstore/storefakes"
	"github.com/AntonAveryan/careermate/session"
)

func setupService(t *testing.T) (*backendtest.Server, *jobs.Service) {
	t.Helper()

	srv := backendtest.New()
	t.Cleanup(srv.Close)

	sess, err := session.New(storefakes.NewFakeStore(), backend.New(srv.URL))
	require.NoError(t, err)
	service, err := jobs.NewService(sess, backend.New(srv.URL))
	require.NoError(t, err)
	return srv, service
}

func TestSearchMergesResultSetsByURN(t *testing.T) {
	srv, service := setupService(t)
	srv.SetJobs(
		[]backendtest.Job{
			{URN: "urn:li:job:1", Title: "Backend Engineer", Company: "Acme"},
			{URN: "urn:li:job:2", Title: "Platform Engineer", Company: "Acme"},
		},
		[]backendtest.Job{
			{URN: "urn:li:job:2", Title: "Duplicate From Skills", Company: "Other"},
			{URN: "urn:li:job:3", Title: "SRE", Company: "Globex"},
		},
	)

	list, err := service.Search(context.Background(), "London", 1)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Career-field results come first and win on a duplicate URN.
	require.Equal(t, "urn:li:job:1", list[0].URN)
	require.Equal(t, "urn:li:job:2", list[1].URN)
	require.Equal(t, "Platform Engineer", list[1].Title)
	require.Equal(t, "urn:li:job:3", list[2].URN)
}

func TestSearchRequiresCity(t *testing.T) {
	_, service := setupService(t)

	_, err := service.Search(context.Background(), "  ", 1)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchWithoutCareerFields(t *testing.T) {
	srv, service := setupService(t)
	srv.NoCareerFields = true

	_, err := service.Search(context.Background(), "London", 1)
	require.ErrorIs(t, err, jobs.ErrNoCareerFields)
}

func TestSearchDeadBackend(t *testing.T) {
	srv, service := setupService(t)
	srv.Close()

	_, err := service.Search(context.Background(), "London", 1)
	require.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
}
