package giveaway

import (
	"context"
	"strings"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
)

// Approve takes a giveaway off moderation and notifies the owner. Approving
// an approved giveaway returns it unchanged and sends nothing.
func (s *Service) Approve(ctx context.Context, id int64) (*dg.Giveaway, error) {
	g, changed, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, s.mapError("approve giveaway", id, err)
	}
	if changed {
		s.log.Info().Int64("giveaway_id", id).Msg("giveaway approved")
		s.notifier.NotifyApproved(ctx, g)
	}
	return g, nil
}

// Reject deletes a giveaway pending moderation and notifies the owner.
func (s *Service) Reject(ctx context.Context, id int64) error {
	g, err := s.repo.Reject(ctx, id)
	if err != nil {
		return s.mapError("reject giveaway", id, err)
	}
	s.log.Info().Int64("giveaway_id", id).Msg("giveaway rejected")
	s.notifier.NotifyRejected(ctx, g)
	return nil
}

// CollectParticipants enqueues a collection run for the giveaway. Only the
// owner of an approved, running giveaway may trigger it. The run happens
// asynchronously and its outcome is never reported back; an empty postURL
// falls back to the giveaway's own post.
func (s *Service) CollectParticipants(ctx context.Context, id, callerID int64, postURL string) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapError("get giveaway", id, err)
	}

	switch g.CheckCollect(callerID) {
	case dg.GateNotOwner:
		return apperrors.NewForbiddenError("only the owner can collect participants").WithDetail("giveaway_id", id)
	case dg.GateOnModeration:
		return apperrors.NewInvalidStateError("giveaway is on moderation").WithDetail("giveaway_id", id)
	case dg.GateEnded:
		return apperrors.NewInvalidStateError("giveaway has ended").WithDetail("giveaway_id", id)
	}

	postURL = strings.TrimSpace(postURL)
	if postURL == "" {
		postURL = g.PostURL
	}
	if postURL == "" {
		return apperrors.NewValidationError("post_url", "giveaway has no post to collect from")
	}

	ev := dg.CollectRequested{GiveawayID: id, PostURL: postURL}
	msgID, err := s.pub.Publish(ctx, s.collectStream, ev.Values())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to enqueue collection")
	}
	s.log.Info().Int64("giveaway_id", id).Str("message_id", msgID).Msg("collection requested")
	return nil
}
