package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

var brickStateColumns = []string{
	"id", "user_id", "brick_kind", "brick_id", "mastery", "mastery_score",
	"last_interval_days", "updated_at",
}

// brickStateRepo implements BrickStateRepo on SQLite.
type brickStateRepo struct {
	db dbtx
}

func (r *brickStateRepo) Get(ctx context.Context, user ids.UserID, brick ids.BrickRef) (mastery.State, error) {
	q := builder.Select(brickStateColumns...).
		From(entsql.Table(BrickStatesTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", string(user)),
			entsql.EQ("brick_kind", string(brick.Kind)),
			entsql.EQ("brick_id", brick.ID),
		))
	st, err := queryOne(ctx, r.db, q, scanBrickState)
	if err != nil {
		return st, fmt.Errorf("get brick state %s: %w", brick, err)
	}
	return st, nil
}

func (r *brickStateRepo) Upsert(ctx context.Context, st mastery.State) error {
	m, err := encodeJSON(st.Mastery)
	if err != nil {
		return err
	}
	ins := builder.Insert(BrickStatesTable.Name).
		Columns(brickStateColumns...).
		Values(string(st.ID), string(st.UserID), string(st.Brick.Kind), st.Brick.ID, m,
			st.Mastery.MasteryScore, st.LastIntervalDays, st.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "brick_kind", "brick_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("mastery")
				u.SetExcluded("mastery_score")
				u.SetExcluded("last_interval_days")
				u.SetExcluded("updated_at")
			}),
		)
	if _, err := exec(ctx, r.db, ins); err != nil {
		return fmt.Errorf("upsert brick state %s: %w", st.Brick, err)
	}
	return nil
}

func (r *brickStateRepo) ListByUser(ctx context.Context, user ids.UserID) ([]mastery.State, error) {
	q := builder.Select(brickStateColumns...).
		From(entsql.Table(BrickStatesTable.Name)).
		Where(entsql.EQ("user_id", string(user))).
		OrderBy("brick_kind", "brick_id")
	out, err := queryAll(ctx, r.db, q, scanBrickState)
	if err != nil {
		return nil, fmt.Errorf("list brick states for %q: %w", user, err)
	}
	return out, nil
}

func scanBrickState(s scanner) (mastery.State, error) {
	var (
		st                      mastery.State
		id, user, kind, brickID string
		m                       string
		score                   int
	)
	if err := s.Scan(&id, &user, &kind, &brickID, &m, &score, &st.LastIntervalDays, &st.UpdatedAt); err != nil {
		return st, err
	}
	st.ID = ids.BrickStateID(id)
	st.UserID = ids.UserID(user)
	st.Brick = ids.BrickRef{Kind: ids.BrickKind(kind), ID: brickID}
	if err := decodeJSON(m, &st.Mastery); err != nil {
		return st, err
	}
	return st, nil
}
