package giveaway

import (
	"context"
	"errors"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
)

// PageParams is the caller-facing page request shared by every listing.
// Forward defaults to true.
type PageParams struct {
	LastItemID *int64
	Offset     int
	Limit      int
	Forward    *bool
}

func (p PageParams) query(shape dg.Shape, userID int64) dg.PageQuery {
	return dg.PageQuery{
		Shape:      shape,
		UserID:     userID,
		LastItemID: p.LastItemID,
		Offset:     p.Offset,
		Limit:      p.Limit,
		Backward:   p.Forward != nil && !*p.Forward,
	}.Normalize()
}

// ListUnmoderated pages through the moderation queue.
func (s *Service) ListUnmoderated(ctx context.Context, p PageParams) (*dg.Page, error) {
	return s.list(ctx, p.query(dg.ShapeUnmoderated, 0))
}

// ListOwned pages through giveaways owned by userID.
func (s *Service) ListOwned(ctx context.Context, userID int64, p PageParams) (*dg.Page, error) {
	return s.list(ctx, p.query(dg.ShapeOwned, userID))
}

// ListPartnered pages through giveaways where userID is a partner.
func (s *Service) ListPartnered(ctx context.Context, userID int64, p PageParams) (*dg.Page, error) {
	return s.list(ctx, p.query(dg.ShapePartnered, userID))
}

func (s *Service) list(ctx context.Context, q dg.PageQuery) (*dg.Page, error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		if errors.Is(err, dg.ErrInvalidCursor) {
			return nil, apperrors.NewInvalidCursorError(*q.LastItemID)
		}
		return nil, s.mapError("list "+q.Shape.String(), 0, err)
	}
	return page, nil
}
