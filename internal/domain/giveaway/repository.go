package giveaway

import "context"

// Repository defines persistence operations for Giveaway aggregate.
type Repository interface {
	Create(ctx context.Context, ownerID int64, f Fields, participants []string, partnerIDs []int64) (*Giveaway, error)
	GetByID(ctx context.Context, id int64) (*Giveaway, error)
	Update(ctx context.Context, id int64, u Update) (*Giveaway, error)
	// AppendParticipants is the single dedup-append primitive. With
	// requireCollectable set it refuses, under the row lock, to merge into a
	// giveaway that is on moderation or ended.
	AppendParticipants(ctx context.Context, id int64, nicknames []string, requireCollectable bool) (int, error)
	Approve(ctx context.Context, id int64) (g *Giveaway, changed bool, err error)
	Reject(ctx context.Context, id int64) (*Giveaway, error)
	End(ctx context.Context, id int64) (changed bool, err error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q PageQuery) (*Page, error)
	SelectWinner(ctx context.Context, id int64, pick func(n int) (int, error)) (string, error)
	ParticipantsStats(ctx context.Context, ownerID int64) ([]ParticipantsStat, error)
	ReconcileCounts(ctx context.Context) (int, error)
}
