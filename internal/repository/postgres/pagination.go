package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
)

// pageSQL is the parameterized query for one PageQuery. Every listing
// shape shares it; only the shape predicate differs.
type pageSQL struct {
	where string
	args  []interface{}
}

func shapeFilter(q dg.PageQuery) (pageSQL, error) {
	switch q.Shape {
	case dg.ShapeUnmoderated:
		return pageSQL{where: "g.on_moderation"}, nil
	case dg.ShapeOwned:
		return pageSQL{where: "g.owner_id = $1", args: []interface{}{q.UserID}}, nil
	case dg.ShapePartnered:
		return pageSQL{
			where: "EXISTS (SELECT 1 FROM giveaway_partners p WHERE p.giveaway_id = g.id AND p.user_id = $1)",
			args:  []interface{}{q.UserID},
		}, nil
	default:
		return pageSQL{}, fmt.Errorf("unknown listing shape %d", q.Shape)
	}
}

// countQuery counts rows matching the shape only
func (p pageSQL) countQuery() (string, []interface{}) {
	return "SELECT COUNT(*) FROM giveaways g WHERE " + p.where, p.args
}

// itemsQuery adds the cursor bound, direction, offset and limit
func (p pageSQL) itemsQuery(q dg.PageQuery) (string, []interface{}) {
	args := append([]interface{}{}, p.args...)
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(giveawayColumns)
	b.WriteString(" FROM giveaways g WHERE ")
	b.WriteString(p.where)

	order := "ASC"
	if q.Backward {
		order = "DESC"
	}
	if q.LastItemID != nil {
		args = append(args, *q.LastItemID)
		op := ">"
		if q.Backward {
			op = "<"
		}
		fmt.Fprintf(&b, " AND g.id %s $%d", op, len(args))
	}
	args = append(args, q.Offset, q.Limit)
	fmt.Fprintf(&b, " ORDER BY g.id %s OFFSET $%d LIMIT $%d", order, len(args)-1, len(args))
	return b.String(), args
}

// List returns one page and the shape total. Cursor check, count and page
// read share a repeatable-read snapshot, so total never skews against items.
func (r *GiveawayRepository) List(ctx context.Context, q dg.PageQuery) (*dg.Page, error) {
	q = q.Normalize()
	filter, err := shapeFilter(q)
	if err != nil {
		return nil, err
	}

	page := &dg.Page{Items: []dg.Giveaway{}}
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err = withTx(ctx, r.db, opts, func(tx *sql.Tx) error {
		if q.LastItemID != nil {
			var exists bool
			const qc = `SELECT EXISTS (SELECT 1 FROM giveaways WHERE id = $1)`
			if err := tx.QueryRowContext(ctx, qc, *q.LastItemID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check cursor: %w", err)
			}
			if !exists {
				return dg.ErrInvalidCursor
			}
		}

		cq, cargs := filter.countQuery()
		if err := tx.QueryRowContext(ctx, cq, cargs...).Scan(&page.Total); err != nil {
			return fmt.Errorf("failed to count giveaways: %w", err)
		}

		iq, iargs := filter.itemsQuery(q)
		rows, err := tx.QueryContext(ctx, iq, iargs...)
		if err != nil {
			return fmt.Errorf("failed to list giveaways: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			g, err := scanGiveaway(rows)
			if err != nil {
				return err
			}
			page.Items = append(page.Items, *g)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		return fillPartnersTx(ctx, tx, page.Items)
	})
	if err != nil {
		return nil, err
	}

	if q.Backward {
		sort.Slice(page.Items, func(i, j int) bool { return page.Items[i].ID < page.Items[j].ID })
	}
	return page, nil
}

func fillPartnersTx(ctx context.Context, tx *sql.Tx, items []dg.Giveaway) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	byID := make(map[int64]*dg.Giveaway, len(items))
	for i := range items {
		ids[i] = items[i].ID
		byID[items[i].ID] = &items[i]
	}
	const q = `SELECT giveaway_id, user_id FROM giveaway_partners WHERE giveaway_id = ANY($1::bigint[]) ORDER BY user_id`
	rows, err := tx.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var gid, uid int64
		if err := rows.Scan(&gid, &uid); err != nil {
			return err
		}
		if g, ok := byID[gid]; ok {
			g.PartnerIDs = append(g.PartnerIDs, uid)
		}
	}
	return rows.Err()
}
