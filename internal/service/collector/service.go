package collector

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	"github.com/Voridan/giveaway-platform/internal/service/instagram"
)

const mergeTimeout = 30 * time.Second

// CommentsSource returns one page of commenters of a media item
type CommentsSource interface {
	FetchComments(ctx context.Context, mediaID string, minID *string) (*instagram.CommentsPage, error)
}

// EntrantStore is the dedup-append primitive of the giveaway store
type EntrantStore interface {
	AppendParticipants(ctx context.Context, id int64, nicknames []string, requireCollectable bool) (int, error)
}

type Config struct {
	// MaxPages bounds a single run, 0 means unbounded
	MaxPages       int
	RequestTimeout time.Duration
	// Retries per page after the first attempt
	Retries      uint64
	RetryBackoff time.Duration
	BatchSize    int
}

// StopReason tells why the page loop ended
type StopReason string

const (
	StopExhausted      StopReason = "exhausted"
	StopUpstreamError  StopReason = "upstream_error"
	StopMaxPages       StopReason = "max_pages"
	StopCursorRepeated StopReason = "cursor_repeated"
	StopMalformedURL   StopReason = "malformed_url"
)

// Result summarizes one collection run
type Result struct {
	GiveawayID int64
	Pages      int
	Collected  int
	Added      int
	Stop       StopReason
	Merged     bool
}

// Service runs the collection algorithm for one request at a time. It is
// safe for concurrent use; runs share nothing but the store.
type Service struct {
	source CommentsSource
	store  EntrantStore
	cfg    Config
	log    zerolog.Logger
}

func NewService(source CommentsSource, store EntrantStore, cfg Config, log zerolog.Logger) *Service {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Service{source: source, store: store, cfg: cfg, log: log.With().Str("component", "collector").Logger()}
}

// Collect paginates the comments of the request's post and merges every
// distinct commenter into the giveaway. An upstream failure ends the loop
// early and whatever was gathered is still merged. Only merge failures are
// returned.
func (s *Service) Collect(ctx context.Context, req dg.CollectRequested) (*Result, error) {
	res := &Result{GiveawayID: req.GiveawayID}
	log := s.log.With().Int64("giveaway_id", req.GiveawayID).Logger()

	mediaID, err := instagram.MediaIDFromURL(req.PostURL)
	if err != nil {
		res.Stop = StopMalformedURL
		log.Warn().Err(err).Str("post_url", req.PostURL).Msg("cannot derive media id, collection aborted")
		return res, nil
	}

	entrants := dg.NewEntrantSet()
	res.Stop = s.paginate(ctx, log, mediaID, entrants, res)
	res.Collected = entrants.Len()

	if entrants.Len() == 0 {
		log.Info().Int("pages", res.Pages).Str("stop", string(res.Stop)).Msg("collection finished with no entrants")
		return res, nil
	}

	// Partial results are merged even when the run was cancelled.
	mergeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mergeTimeout)
	defer cancel()
	if err := s.merge(mergeCtx, req.GiveawayID, entrants.Members(), res); err != nil {
		log.Error().Err(err).Int("collected", res.Collected).Int("added", res.Added).Msg("failed to merge entrants")
		return res, err
	}
	res.Merged = true

	log.Info().
		Int("pages", res.Pages).
		Int("collected", res.Collected).
		Int("added", res.Added).
		Str("stop", string(res.Stop)).
		Msg("collection finished")
	return res, nil
}

func (s *Service) paginate(ctx context.Context, log zerolog.Logger, mediaID string, entrants *dg.EntrantSet, res *Result) StopReason {
	var cursor *string
	seen := make(map[string]struct{})
	for {
		if s.cfg.MaxPages > 0 && res.Pages >= s.cfg.MaxPages {
			log.Warn().Int("max_pages", s.cfg.MaxPages).Msg("page bound reached")
			return StopMaxPages
		}

		page, err := s.fetchPage(ctx, mediaID, cursor)
		if err != nil {
			log.Warn().Err(err).Int("pages", res.Pages).Msg("comments fetch failed, merging partial result")
			return StopUpstreamError
		}
		res.Pages++
		entrants.Merge(page.Usernames)

		if page.NextMinID == nil {
			return StopExhausted
		}
		if _, dup := seen[*page.NextMinID]; dup {
			log.Warn().Str("cursor", *page.NextMinID).Msg("upstream repeated a cursor")
			return StopCursorRepeated
		}
		seen[*page.NextMinID] = struct{}{}
		cursor = page.NextMinID
	}
}

// fetchPage calls the upstream with a per-call timeout, retrying transient
// failures as configured. Client errors other than 429 are not retried.
func (s *Service) fetchPage(ctx context.Context, mediaID string, cursor *string) (*instagram.CommentsPage, error) {
	op := func() (*instagram.CommentsPage, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		page, err := s.source.FetchComments(callCtx, mediaID, cursor)
		if err != nil {
			if permanent(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return page, nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.RetryBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(eb, s.cfg.Retries), ctx)
	return backoff.RetryWithData(op, b)
}

func permanent(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	status := instagram.StatusOf(err)
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}

func (s *Service) merge(ctx context.Context, giveawayID int64, nicknames []string, res *Result) error {
	for start := 0; start < len(nicknames); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(nicknames) {
			end = len(nicknames)
		}
		added, err := s.store.AppendParticipants(ctx, giveawayID, nicknames[start:end], true)
		if err != nil {
			return err
		}
		res.Added += added
	}
	return nil
}
