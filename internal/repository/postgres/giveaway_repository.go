package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
)

// GiveawayRepository persists giveaways with their participants and partners.
type GiveawayRepository struct {
	db *sql.DB
}

func NewGiveawayRepository(db *sql.DB) *GiveawayRepository { return &GiveawayRepository{db: db} }

const giveawayColumns = `g.id, g.owner_id, g.title, g.description, g.post_url, g.image_url,
	g.on_moderation, g.ended, g.participants_count, g.winner_id, g.created_at, g.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGiveaway(row rowScanner) (*dg.Giveaway, error) {
	var (
		g        dg.Giveaway
		winnerID sql.NullInt64
	)
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.PostURL, &g.ImageURL,
		&g.OnModeration, &g.Ended, &g.ParticipantsCount, &winnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if winnerID.Valid {
		v := winnerID.Int64
		g.WinnerID = &v
	}
	g.PartnerIDs = []int64{}
	return &g, nil
}

// Create inserts the giveaway, its initial participants and partners in one transaction.
func (r *GiveawayRepository) Create(ctx context.Context, ownerID int64, f dg.Fields, participants []string, partnerIDs []int64) (*dg.Giveaway, error) {
	var out *dg.Giveaway
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		const q = `
		INSERT INTO giveaways (owner_id, title, description, post_url, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
		var id int64
		if err := tx.QueryRowContext(ctx, q, ownerID, f.Title, f.Description, f.PostURL, f.ImageURL).Scan(&id); err != nil {
			if isForeignKeyViolation(err) {
				return dg.ErrInvalidOwner
			}
			return fmt.Errorf("failed to insert giveaway: %w", err)
		}

		if _, err := appendParticipantsTx(ctx, tx, id, participants); err != nil {
			return err
		}
		if err := addPartnersTx(ctx, tx, id, partnerIDs); err != nil {
			return err
		}

		g, err := getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID reads the giveaway with participants and partners from one snapshot.
func (r *GiveawayRepository) GetByID(ctx context.Context, id int64) (*dg.Giveaway, error) {
	var out *dg.Giveaway
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := withTx(ctx, r.db, opts, func(tx *sql.Tx) error {
		g, err := getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getTx(ctx context.Context, q queryer, id int64) (*dg.Giveaway, error) {
	row := q.QueryRowContext(ctx, `SELECT `+giveawayColumns+` FROM giveaways g WHERE g.id = $1`, id)
	g, err := scanGiveaway(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dg.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}

	const qp = `SELECT id, nickname FROM giveaway_participants WHERE giveaway_id = $1 ORDER BY id`
	rows, err := q.QueryContext(ctx, qp, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()
	g.Participants = make([]string, 0, g.ParticipantsCount)
	for rows.Next() {
		var (
			pid      int64
			nickname string
		)
		if err := rows.Scan(&pid, &nickname); err != nil {
			return nil, err
		}
		if g.WinnerID != nil && *g.WinnerID == pid {
			w := nickname
			g.Winner = &w
		}
		g.Participants = append(g.Participants, nickname)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	partners, err := partnerIDsTx(ctx, q, id)
	if err != nil {
		return nil, err
	}
	g.PartnerIDs = partners
	return g, nil
}

func partnerIDsTx(ctx context.Context, q queryer, id int64) ([]int64, error) {
	const qs = `SELECT user_id FROM giveaway_partners WHERE giveaway_id = $1 ORDER BY user_id`
	rows, err := q.QueryContext(ctx, qs, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get partners: %w", err)
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		ids = append(ids, uid)
	}
	return ids, rows.Err()
}

type lockedState struct {
	ownerID      int64
	onModeration bool
	ended        bool
}

// lockTx takes the row lock every mutator of a giveaway serializes on.
func lockTx(ctx context.Context, tx *sql.Tx, id int64) (*lockedState, error) {
	const q = `SELECT owner_id, on_moderation, ended FROM giveaways WHERE id = $1 FOR UPDATE`
	var s lockedState
	if err := tx.QueryRowContext(ctx, q, id).Scan(&s.ownerID, &s.onModeration, &s.ended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dg.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock giveaway: %w", err)
	}
	return &s, nil
}

// appendParticipantsTx inserts the nicknames not yet present and bumps the
// counter by exactly the number inserted, in one statement. The caller must
// hold the row lock.
func appendParticipantsTx(ctx context.Context, tx *sql.Tx, id int64, nicknames []string) (int, error) {
	if len(nicknames) == 0 {
		return 0, nil
	}
	const q = `
	WITH ins AS (
		INSERT INTO giveaway_participants (giveaway_id, nickname)
		SELECT $1, n.nickname
		FROM unnest($2::text[]) WITH ORDINALITY AS n(nickname, ord)
		ORDER BY n.ord
		ON CONFLICT (giveaway_id, nickname) DO NOTHING
		RETURNING 1
	)
	UPDATE giveaways
	SET participants_count = participants_count + (SELECT COUNT(*) FROM ins),
		updated_at = NOW()
	WHERE id = $1
	RETURNING (SELECT COUNT(*) FROM ins)`
	var added int
	if err := tx.QueryRowContext(ctx, q, id, pq.Array(nicknames)).Scan(&added); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, dg.ErrNotFound
		}
		return 0, fmt.Errorf("failed to append participants: %w", err)
	}
	return added, nil
}

func addPartnersTx(ctx context.Context, tx *sql.Tx, id int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	const q = `
	INSERT INTO giveaway_partners (giveaway_id, user_id)
	SELECT $1, u FROM unnest($2::bigint[]) AS u
	ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, q, id, pq.Array(userIDs)); err != nil {
		if isForeignKeyViolation(err) {
			return dg.ErrInvalidOwner
		}
		return fmt.Errorf("failed to add partners: %w", err)
	}
	return nil
}

func removePartnersTx(ctx context.Context, tx *sql.Tx, id int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	const q = `DELETE FROM giveaway_partners WHERE giveaway_id = $1 AND user_id = ANY($2::bigint[])`
	if _, err := tx.ExecContext(ctx, q, id, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("failed to remove partners: %w", err)
	}
	return nil
}

// AppendParticipants merges nicknames into the entrant set of one giveaway.
func (r *GiveawayRepository) AppendParticipants(ctx context.Context, id int64, nicknames []string, requireCollectable bool) (int, error) {
	var added int
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		s, err := lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if requireCollectable && (s.onModeration || s.ended) {
			return dg.ErrNotCollectable
		}
		added, err = appendParticipantsTx(ctx, tx, id, nicknames)
		return err
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Update applies a patch under the row lock and returns the new snapshot.
func (r *GiveawayRepository) Update(ctx context.Context, id int64, u dg.Update) (*dg.Giveaway, error) {
	var out *dg.Giveaway
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := lockTx(ctx, tx, id); err != nil {
			return err
		}

		if u.Title != nil || u.Description != nil || u.PostURL != nil || u.ImageURL != nil {
			const q = `
			UPDATE giveaways SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				post_url = COALESCE($4, post_url),
				image_url = COALESCE($5, image_url),
				updated_at = NOW()
			WHERE id = $1`
			if _, err := tx.ExecContext(ctx, q, id, u.Title, u.Description, u.PostURL, u.ImageURL); err != nil {
				return fmt.Errorf("failed to update giveaway: %w", err)
			}
		}

		if _, err := appendParticipantsTx(ctx, tx, id, u.Participants); err != nil {
			return err
		}

		if u.PartnerIDs != nil {
			current, err := partnerIDsTx(ctx, tx, id)
			if err != nil {
				return err
			}
			added, removed := dg.DiffPartners(current, *u.PartnerIDs)
			if err := removePartnersTx(ctx, tx, id, removed); err != nil {
				return err
			}
			if err := addPartnersTx(ctx, tx, id, added); err != nil {
				return err
			}
		}

		g, err := getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve clears the moderation flag. changed is false when the giveaway
// was already approved.
func (r *GiveawayRepository) Approve(ctx context.Context, id int64) (*dg.Giveaway, bool, error) {
	var (
		out     *dg.Giveaway
		changed bool
	)
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		s, err := lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if s.onModeration {
			const q = `UPDATE giveaways SET on_moderation = FALSE, updated_at = NOW() WHERE id = $1`
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to approve giveaway: %w", err)
			}
			changed = true
		}
		out, err = getTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, changed, nil
}

// Reject deletes a giveaway still on moderation and returns its last snapshot.
func (r *GiveawayRepository) Reject(ctx context.Context, id int64) (*dg.Giveaway, error) {
	var out *dg.Giveaway
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		s, err := lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !s.onModeration {
			return dg.ErrAlreadyClosed
		}
		out, err = getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM giveaways WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete giveaway: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// End marks the giveaway ended; ending twice is not an error.
func (r *GiveawayRepository) End(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE giveaways SET ended = TRUE, updated_at = NOW() WHERE id = $1 AND NOT ended`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("failed to end giveaway: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM giveaways WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check giveaway: %w", err)
	}
	if !exists {
		return false, dg.ErrNotFound
	}
	return false, nil
}

// Delete removes the giveaway; participants and partner rows cascade.
func (r *GiveawayRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM giveaways WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dg.ErrNotFound
	}
	return nil
}

// SelectWinner draws a winner among participants of an ended giveaway.
// An already drawn winner is returned unchanged.
func (r *GiveawayRepository) SelectWinner(ctx context.Context, id int64, pick func(n int) (int, error)) (string, error) {
	var winner string
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		const qLock = `SELECT ended, winner_id FROM giveaways WHERE id = $1 FOR UPDATE`
		var (
			ended    bool
			winnerID sql.NullInt64
			count    int
		)
		if err := tx.QueryRowContext(ctx, qLock, id).Scan(&ended, &winnerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return dg.ErrNotFound
			}
			return fmt.Errorf("failed to lock giveaway: %w", err)
		}
		if !ended {
			return dg.ErrNotEnded
		}
		if winnerID.Valid {
			const q = `SELECT nickname FROM giveaway_participants WHERE id = $1`
			if err := tx.QueryRowContext(ctx, q, winnerID.Int64).Scan(&winner); err == nil {
				return nil
			} else if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to read winner: %w", err)
			}
		}
		// Draw over the rows themselves; the stored counter may lag until reconcile.
		const qCount = `SELECT COUNT(*) FROM giveaway_participants WHERE giveaway_id = $1`
		if err := tx.QueryRowContext(ctx, qCount, id).Scan(&count); err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		if count == 0 {
			return dg.ErrNoParticipants
		}

		idx, err := pick(count)
		if err != nil {
			return err
		}
		const qPick = `SELECT id, nickname FROM giveaway_participants WHERE giveaway_id = $1 ORDER BY id OFFSET $2 LIMIT 1`
		var pid int64
		if err := tx.QueryRowContext(ctx, qPick, id, idx).Scan(&pid, &winner); err != nil {
			return fmt.Errorf("failed to pick winner: %w", err)
		}
		const qSet = `UPDATE giveaways SET winner_id = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, qSet, id, pid); err != nil {
			return fmt.Errorf("failed to set winner: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return winner, nil
}

// ParticipantsStats lists title and participant count of every giveaway of the owner.
func (r *GiveawayRepository) ParticipantsStats(ctx context.Context, ownerID int64) ([]dg.ParticipantsStat, error) {
	const q = `SELECT id, title, participants_count FROM giveaways WHERE owner_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer rows.Close()
	out := []dg.ParticipantsStat{}
	for rows.Next() {
		var s dg.ParticipantsStat
		if err := rows.Scan(&s.ID, &s.Title, &s.ParticipantsCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReconcileCounts resets participants_count to the real child-row count on
// every drifted giveaway and returns how many were fixed. Each row is
// recounted under its lock so concurrent merges are never clobbered.
func (r *GiveawayRepository) ReconcileCounts(ctx context.Context) (int, error) {
	const qDrift = `
	SELECT g.id
	FROM giveaways g
	LEFT JOIN giveaway_participants p ON p.giveaway_id = g.id
	GROUP BY g.id
	HAVING g.participants_count <> COUNT(p.id)`
	rows, err := r.db.QueryContext(ctx, qDrift)
	if err != nil {
		return 0, fmt.Errorf("failed to find drifted counters: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	fixed := 0
	for _, id := range ids {
		err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
			if _, err := lockTx(ctx, tx, id); err != nil {
				return err
			}
			const q = `
			UPDATE giveaways
			SET participants_count = (SELECT COUNT(*) FROM giveaway_participants WHERE giveaway_id = $1),
				updated_at = NOW()
			WHERE id = $1`
			_, err := tx.ExecContext(ctx, q, id)
			return err
		})
		if errors.Is(err, dg.ErrNotFound) {
			continue
		}
		if err != nil {
			return fixed, fmt.Errorf("failed to reconcile giveaway %d: %w", id, err)
		}
		fixed++
	}
	return fixed, nil
}
