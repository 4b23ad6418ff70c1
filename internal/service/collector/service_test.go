package collector

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	"github.com/Voridan/giveaway-platform/internal/service/instagram"
)

const postURL = "https://www.instagram.com/p/CxOz9uFv7pL/"

type step struct {
	page *instagram.CommentsPage
	err  error
}

// scriptedSource replays steps in order and records the cursors it was asked for.
type scriptedSource struct {
	mu      sync.Mutex
	steps   []step
	calls   int
	mediaID string
	cursors []*string
}

func (s *scriptedSource) FetchComments(_ context.Context, mediaID string, minID *string) (*instagram.CommentsPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediaID = mediaID
	s.cursors = append(s.cursors, minID)
	if s.calls >= len(s.steps) {
		return nil, errors.New("script exhausted")
	}
	st := s.steps[s.calls]
	s.calls++
	return st.page, st.err
}

type memoryStore struct {
	mu       sync.Mutex
	set      *dg.EntrantSet
	batches  [][]string
	required []bool
	err      error
}

func newMemoryStore(existing ...string) *memoryStore {
	return &memoryStore{set: dg.NewEntrantSet(existing...)}
}

func (m *memoryStore) AppendParticipants(_ context.Context, _ int64, nicknames []string, requireCollectable bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, nicknames)
	m.required = append(m.required, requireCollectable)
	return len(m.set.Merge(nicknames)), nil
}

func page(next string, users ...string) step {
	p := &instagram.CommentsPage{Usernames: users}
	if next != "" {
		p.NextMinID = &next
	}
	return step{page: p}
}

func fail(status int) step {
	return step{err: apperrors.NewUpstreamError("test", status, errors.New("boom"))}
}

func newTestService(src CommentsSource, store EntrantStore, cfg Config) *Service {
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	return NewService(src, store, cfg, zerolog.Nop())
}

func TestCollect_AllPages(t *testing.T) {
	src := &scriptedSource{steps: []step{
		page("c1", "sara", "John"),
		page("c2", "john", "luke"),
		page("", "mike"),
	}}
	store := newMemoryStore("sara")
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, "3192717727600982603", src.mediaID)
	require.Len(t, src.cursors, 3)
	assert.Nil(t, src.cursors[0])
	assert.Equal(t, "c1", *src.cursors[1])
	assert.Equal(t, "c2", *src.cursors[2])

	assert.Equal(t, StopExhausted, res.Stop)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 4, res.Collected)
	assert.Equal(t, 3, res.Added)
	assert.True(t, res.Merged)
	assert.Equal(t, []bool{true}, store.required)
}

func TestCollect_UpstreamErrorMergesPartialResult(t *testing.T) {
	src := &scriptedSource{steps: []step{
		page("c1", "a", "b"),
		page("c2", "c"),
		fail(http.StatusInternalServerError),
	}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, StopUpstreamError, res.Stop)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"a", "b", "c"}, store.set.Members())
	assert.True(t, res.Merged)
}

func TestCollect_RetriesTransientFailures(t *testing.T) {
	src := &scriptedSource{steps: []step{
		fail(http.StatusBadGateway),
		fail(http.StatusTooManyRequests),
		page("", "a"),
	}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{Retries: 2})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, 3, src.calls)
	assert.Equal(t, StopExhausted, res.Stop)
	assert.Equal(t, 1, res.Added)
}

func TestCollect_ClientErrorIsNotRetried(t *testing.T) {
	src := &scriptedSource{steps: []step{
		page("c1", "a"),
		fail(http.StatusNotFound),
		page("", "never"),
	}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{Retries: 5})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, StopUpstreamError, res.Stop)
	assert.Equal(t, []string{"a"}, store.set.Members())
}

func TestCollect_MaxPages(t *testing.T) {
	src := &scriptedSource{steps: []step{
		page("c1", "a"),
		page("c2", "b"),
		page("c3", "c"),
	}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{MaxPages: 2})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, StopMaxPages, res.Stop)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"a", "b"}, store.set.Members())
}

func TestCollect_RepeatedCursor(t *testing.T) {
	src := &scriptedSource{steps: []step{
		page("c1", "a"),
		page("c2", "b"),
		page("c1", "c"),
		page("", "never"),
	}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, StopCursorRepeated, res.Stop)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, []string{"a", "b", "c"}, store.set.Members())
}

func TestCollect_MalformedURL(t *testing.T) {
	src := &scriptedSource{}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: "https://example.com/nothing"})
	require.NoError(t, err)

	assert.Equal(t, StopMalformedURL, res.Stop)
	assert.Zero(t, src.calls)
	assert.Empty(t, store.batches)
}

func TestCollect_NoEntrantsSkipsMerge(t *testing.T) {
	src := &scriptedSource{steps: []step{page("")}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.False(t, res.Merged)
	assert.Empty(t, store.batches)
}

func TestCollect_BatchesMerge(t *testing.T) {
	src := &scriptedSource{steps: []step{page("", "a", "b", "c", "d", "e")}}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{BatchSize: 2})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, store.batches)
	assert.Equal(t, 5, res.Added)
}

func TestCollect_MergeFailureIsReturned(t *testing.T) {
	src := &scriptedSource{steps: []step{page("", "a")}}
	store := newMemoryStore()
	store.err = dg.ErrNotCollectable
	svc := newTestService(src, store, Config{})

	res, err := svc.Collect(context.Background(), dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	assert.ErrorIs(t, err, dg.ErrNotCollectable)
	assert.False(t, res.Merged)
}

func TestCollect_CancelledRunStillMerges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &cancellingSource{cancel: cancel}
	store := newMemoryStore()
	svc := newTestService(src, store, Config{Retries: 3})

	res, err := svc.Collect(ctx, dg.CollectRequested{GiveawayID: 1, PostURL: postURL})
	require.NoError(t, err)

	assert.Equal(t, StopUpstreamError, res.Stop)
	assert.True(t, res.Merged)
	assert.Equal(t, []string{"a"}, store.set.Members())
}

// cancellingSource serves one page, then cancels the run and fails.
type cancellingSource struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingSource) FetchComments(ctx context.Context, _ string, _ *string) (*instagram.CommentsPage, error) {
	c.calls++
	if c.calls == 1 {
		next := "c1"
		return &instagram.CommentsPage{Usernames: []string{"a"}, NextMinID: &next}, nil
	}
	c.cancel()
	return nil, ctx.Err()
}
