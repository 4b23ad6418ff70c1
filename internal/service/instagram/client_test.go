package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "key-1", APIHost: "rocketapi.example", Timeout: 2 * time.Second})
}

func TestFetchComments(t *testing.T) {
	var got commentsRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, commentsEndpoint, r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "rocketapi.example", r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "done",
			"response": {
				"status_code": 200,
				"body": {
					"comments": [
						{"user": {"username": "sara"}},
						{"user": {"username": ""}},
						{"user": {"username": "John"}}
					],
					"next_min_id": "cursor-2"
				}
			}
		}`))
	})

	page, err := client.FetchComments(context.Background(), "123", nil)
	require.NoError(t, err)

	assert.Equal(t, "123", got.ID)
	assert.Nil(t, got.MinID)
	assert.False(t, got.CanSupportThreading)
	assert.Equal(t, []string{"sara", "John"}, page.Usernames)
	require.NotNil(t, page.NextMinID)
	assert.Equal(t, "cursor-2", *page.NextMinID)
}

func TestFetchComments_LastPage(t *testing.T) {
	var got commentsRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response": {"body": {"comments": [], "next_min_id": ""}}}`))
	})

	minID := "cursor-2"
	page, err := client.FetchComments(context.Background(), "123", &minID)
	require.NoError(t, err)

	require.NotNil(t, got.MinID)
	assert.Equal(t, "cursor-2", *got.MinID)
	assert.Empty(t, page.Usernames)
	assert.Nil(t, page.NextMinID)
}

func TestFetchComments_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusInternalServerError)
	})

	_, err := client.FetchComments(context.Background(), "123", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestFetchComments_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchComments(context.Background(), "123", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRateLimit, apperrors.CodeOf(err))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(err))

	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, "3s", appErr.Details["retry_after"])
}

func TestFetchComments_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.FetchComments(context.Background(), "123", nil)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
}

func TestStatusOf_ForeignError(t *testing.T) {
	assert.Equal(t, 0, StatusOf(context.Canceled))
}
