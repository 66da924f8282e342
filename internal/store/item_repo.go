package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

var itemColumns = []string{
	"id", "user_id", "template_id", "variant_id", "concept_ids", "scheduled_for",
	"reason", "recommended_mode", "priority", "completed", "completed_at",
	"completed_by_attempt_id", "created_at", "updated_at",
}

// itemRepo implements SchedulerItemRepo on SQLite.
type itemRepo struct {
	db dbtx
}

func (r *itemRepo) Get(ctx context.Context, id ids.SchedulerItemID) (spacedrep.Item, error) {
	q := builder.Select(itemColumns...).
		From(entsql.Table(SchedulerItemsTable.Name)).
		Where(entsql.EQ("id", string(id)))
	it, err := queryOne(ctx, r.db, q, scanItem)
	if err != nil {
		return it, fmt.Errorf("get scheduler item %q: %w", id, err)
	}
	return it, nil
}

func (r *itemRepo) Create(ctx context.Context, it spacedrep.Item) error {
	concepts, err := encodeJSON(it.ConceptIDs)
	if err != nil {
		return err
	}
	var completedAt any
	if it.CompletedAt != nil {
		completedAt = it.CompletedAt.UTC()
	}
	ins := builder.Insert(SchedulerItemsTable.Name).
		Columns(itemColumns...).
		Values(string(it.ID), string(it.UserID), string(it.TemplateID), string(it.VariantID),
			concepts, it.ScheduledFor.UTC(), string(it.Reason), string(it.RecommendedMode),
			it.Priority, it.Completed, completedAt, string(it.CompletedByAttemptID),
			it.CreatedAt.UTC(), it.UpdatedAt.UTC())
	if err := insertNew(ctx, r.db, ins); err != nil {
		return fmt.Errorf("create scheduler item %q: %w", it.ID, err)
	}
	return nil
}

// Update writes the mutable fields: schedule, reason, priority and
// completion.
func (r *itemRepo) Update(ctx context.Context, it spacedrep.Item) error {
	upd := builder.Update(SchedulerItemsTable.Name).
		Set("scheduled_for", it.ScheduledFor.UTC()).
		Set("reason", string(it.Reason)).
		Set("priority", it.Priority).
		Set("completed", it.Completed).
		Set("completed_by_attempt_id", string(it.CompletedByAttemptID)).
		Set("updated_at", it.UpdatedAt.UTC())
	if it.CompletedAt != nil {
		upd.Set("completed_at", it.CompletedAt.UTC())
	} else {
		upd.SetNull("completed_at")
	}
	upd.Where(entsql.EQ("id", string(it.ID)))
	if err := mustAffect(exec(ctx, r.db, upd)); err != nil {
		return fmt.Errorf("update scheduler item %q: %w", it.ID, err)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id ids.SchedulerItemID) error {
	del := builder.Delete(SchedulerItemsTable.Name).Where(entsql.EQ("id", string(id)))
	if err := mustAffect(exec(ctx, r.db, del)); err != nil {
		return fmt.Errorf("delete scheduler item %q: %w", id, err)
	}
	return nil
}

func (r *itemRepo) ListPending(ctx context.Context, user ids.UserID) ([]spacedrep.Item, error) {
	q := builder.Select(itemColumns...).
		From(entsql.Table(SchedulerItemsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", string(user)),
			entsql.EQ("completed", false),
		)).
		OrderBy("scheduled_for", "id")
	out, err := queryAll(ctx, r.db, q, scanItem)
	if err != nil {
		return nil, fmt.Errorf("list pending items for %q: %w", user, err)
	}
	return out, nil
}

func (r *itemRepo) ListByTemplate(ctx context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]spacedrep.Item, error) {
	q := builder.Select(itemColumns...).
		From(entsql.Table(SchedulerItemsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", string(user)),
			entsql.EQ("template_id", string(tpl)),
		)).
		OrderBy("scheduled_for", "id")
	out, err := queryAll(ctx, r.db, q, scanItem)
	if err != nil {
		return nil, fmt.Errorf("list items on %q: %w", tpl, err)
	}
	return out, nil
}

func scanItem(s scanner) (spacedrep.Item, error) {
	var (
		it                         spacedrep.Item
		id, user, tpl, variant     string
		concepts, reason, mode, by string
		completedAt                sql.NullTime
	)
	if err := s.Scan(&id, &user, &tpl, &variant, &concepts, &it.ScheduledFor, &reason, &mode,
		&it.Priority, &it.Completed, &completedAt, &by, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return it, err
	}
	it.ID = ids.SchedulerItemID(id)
	it.UserID = ids.UserID(user)
	it.TemplateID = ids.ExerciseTemplateID(tpl)
	it.VariantID = ids.ExerciseVariantID(variant)
	it.Reason = spacedrep.Reason(reason)
	it.RecommendedMode = mastery.Mode(mode)
	it.CompletedByAttemptID = ids.AttemptID(by)
	if completedAt.Valid {
		t := completedAt.Time
		it.CompletedAt = &t
	}
	if err := decodeJSON(concepts, &it.ConceptIDs); err != nil {
		return it, err
	}
	return it, nil
}
