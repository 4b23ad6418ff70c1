package giveaway

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
	"github.com/Voridan/giveaway-platform/internal/common/validation"
	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	du "github.com/Voridan/giveaway-platform/internal/domain/user"
	"github.com/Voridan/giveaway-platform/internal/utils/random"
)

// Publisher appends an entry to a named stream
type Publisher interface {
	Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error)
}

// Notifier receives moderation outcomes. Implementations must not block on delivery.
type Notifier interface {
	NotifyApproved(ctx context.Context, g *dg.Giveaway)
	NotifyRejected(ctx context.Context, g *dg.Giveaway)
}

// Service contains business rules for giveaways.
type Service struct {
	repo          dg.Repository
	users         du.Reader
	notifier      Notifier
	pub           Publisher
	collectStream string
	log           zerolog.Logger
	pick          func(n int) (int, error)
}

func NewService(r dg.Repository, users du.Reader, notifier Notifier, pub Publisher, collectStream string, log zerolog.Logger) *Service {
	return &Service{
		repo:          r,
		users:         users,
		notifier:      notifier,
		pub:           pub,
		collectStream: collectStream,
		log:           log.With().Str("component", "giveaway_service").Logger(),
		pick:          random.Intn,
	}
}

// CreateInput carries a new giveaway. Participants and partner ids come as
// whitespace separated text and a list respectively.
type CreateInput struct {
	OwnerID      int64
	Title        string
	Description  string
	PostURL      string
	ImageURL     string
	Participants string
	PartnerIDs   []int64
}

// UpdateInput is a partial update; nil fields are left as they are.
type UpdateInput struct {
	Title        *string
	Description  *string
	PostURL      *string
	ImageURL     *string
	Participants *string
	PartnerIDs   *[]int64
}

// Create validates references and persists a new giveaway pending moderation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dg.Giveaway, error) {
	if err := validateFields(&in.Title, &in.Description, &in.PostURL, &in.ImageURL); err != nil {
		return nil, err
	}
	participants := dg.ParseNicknames(in.Participants)
	if err := validation.ValidateNicknames(participants); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get owner", err)
	}
	if owner == nil {
		return nil, apperrors.NewNotFoundError("user", in.OwnerID)
	}

	partners := dg.PartnerSet(in.OwnerID, in.PartnerIDs)
	if len(partners) > 0 {
		found, err := s.users.GetManyByID(ctx, partners)
		if err != nil {
			return nil, apperrors.NewDatabaseError("get partners", err)
		}
		if missing := missingIDs(partners, found); len(missing) > 0 {
			return nil, apperrors.NewInvalidReferenceError("partner", missing)
		}
	}

	fields := dg.Fields{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		PostURL:     strings.TrimSpace(in.PostURL),
		ImageURL:    in.ImageURL,
	}
	g, err := s.repo.Create(ctx, in.OwnerID, fields, participants, partners)
	if err != nil {
		return nil, s.mapError("create giveaway", 0, err)
	}
	s.log.Info().Int64("giveaway_id", g.ID).Int64("owner_id", g.OwnerID).Int("participants", g.ParticipantsCount).Msg("giveaway created")
	return g, nil
}

// GetByID fetches giveaway by id.
func (s *Service) GetByID(ctx context.Context, id int64) (*dg.Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError("get giveaway", id, err)
	}
	return g, nil
}

// Update applies a patch. Participants are appended with dedup, a present
// partner list replaces the current one.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*dg.Giveaway, error) {
	u := dg.Update{
		Title:       in.Title,
		Description: in.Description,
		PostURL:     in.PostURL,
		ImageURL:    in.ImageURL,
	}
	if err := validateFields(in.Title, in.Description, in.PostURL, in.ImageURL); err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		u.Title = &title
	}
	if in.Participants != nil {
		u.Participants = dg.ParseNicknames(*in.Participants)
		if err := validation.ValidateNicknames(u.Participants); err != nil {
			return nil, err
		}
	}

	if in.PartnerIDs != nil {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, s.mapError("get giveaway", id, err)
		}
		next := dg.PartnerSet(current.OwnerID, *in.PartnerIDs)
		resolved := []int64{}
		if len(next) > 0 {
			found, err := s.users.GetManyByID(ctx, next)
			if err != nil {
				return nil, apperrors.NewDatabaseError("get partners", err)
			}
			if len(found) == 0 {
				return nil, apperrors.NewInvalidReferenceError("partner", next)
			}
			for _, f := range found {
				resolved = append(resolved, f.ID)
			}
		}
		u.PartnerIDs = &resolved
	}

	g, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, s.mapError("update giveaway", id, err)
	}
	return g, nil
}

// AddParticipants parses a blob of nicknames and merges the new ones.
// It returns how many were actually added.
func (s *Service) AddParticipants(ctx context.Context, id int64, blob string) (int, error) {
	nicknames := dg.ParseNicknames(blob)
	if err := validation.ValidateNicknames(nicknames); err != nil {
		return 0, err
	}
	added, err := s.repo.AppendParticipants(ctx, id, nicknames, false)
	if err != nil {
		return 0, s.mapError("add participants", id, err)
	}
	return added, nil
}

// End closes the giveaway for collection. Ending twice is a no-op.
func (s *Service) End(ctx context.Context, id int64) error {
	changed, err := s.repo.End(ctx, id)
	if err != nil {
		return s.mapError("end giveaway", id, err)
	}
	if changed {
		s.log.Info().Int64("giveaway_id", id).Msg("giveaway ended")
	}
	return nil
}

// Remove deletes the giveaway with its participants and partner links.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError("delete giveaway", id, err)
	}
	return nil
}

// Results returns participants and the winner, if drawn.
func (s *Service) Results(ctx context.Context, id int64) (*dg.Results, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dg.Results{GiveawayID: g.ID, Participants: g.Participants, Winner: g.Winner}, nil
}

// SelectWinner draws a winner of an ended giveaway.
func (s *Service) SelectWinner(ctx context.Context, id int64) (string, error) {
	winner, err := s.repo.SelectWinner(ctx, id, s.pick)
	if err != nil {
		return "", s.mapError("select winner", id, err)
	}
	s.log.Info().Int64("giveaway_id", id).Str("winner", winner).Msg("winner selected")
	return winner, nil
}

// ParticipantsStats lists participant counts of the owner's giveaways.
func (s *Service) ParticipantsStats(ctx context.Context, ownerID int64) ([]dg.ParticipantsStat, error) {
	stats, err := s.repo.ParticipantsStats(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("participants stats", err)
	}
	return stats, nil
}

// ReconcileCounts repairs participant counters that drifted from the stored set.
func (s *Service) ReconcileCounts(ctx context.Context) (int, error) {
	fixed, err := s.repo.ReconcileCounts(ctx)
	if err != nil {
		return fixed, apperrors.NewDatabaseError("reconcile counts", err)
	}
	if fixed > 0 {
		s.log.Warn().Int("fixed", fixed).Msg("participant counters reconciled")
	}
	return fixed, nil
}

func (s *Service) mapError(op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, dg.ErrNotFound):
		return apperrors.NewNotFoundError("giveaway", id)
	case errors.Is(err, dg.ErrInvalidOwner):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidReference, "owner or partner does not resolve")
	case errors.Is(err, dg.ErrAlreadyClosed),
		errors.Is(err, dg.ErrNotEnded),
		errors.Is(err, dg.ErrNoParticipants),
		errors.Is(err, dg.ErrNotCollectable):
		return apperrors.NewInvalidStateError(err.Error()).WithDetail("giveaway_id", id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperrors.NewDatabaseError(op, err)
	}
}

// validateFields checks whichever fields are present
func validateFields(title, description, postURL, imageURL *string) error {
	if title != nil {
		if err := validation.ValidateTitle(*title); err != nil {
			return err
		}
	}
	if description != nil {
		if err := validation.ValidateDescription(*description); err != nil {
			return err
		}
	}
	if postURL != nil {
		if err := validation.ValidateURL("post_url", *postURL); err != nil {
			return err
		}
	}
	if imageURL != nil {
		if err := validation.ValidateURL("image_url", *imageURL); err != nil {
			return err
		}
	}
	return nil
}

func missingIDs(want []int64, found []du.User) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, u := range found {
		have[u.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
