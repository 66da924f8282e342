package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

var attemptColumns = []string{
	"id", "user_id", "template_id", "variant_id", "session_id", "mode",
	"started_at", "ended_at", "status", "subtasks", "correct_count",
	"subtask_count", "accuracy",
}

// attemptRepo implements AttemptRepo on SQLite.
type attemptRepo struct {
	db dbtx
}

func (r *attemptRepo) Get(ctx context.Context, id ids.AttemptID) (mastery.Attempt, error) {
	q := builder.Select(attemptColumns...).
		From(entsql.Table(AttemptsTable.Name)).
		Where(entsql.EQ("id", string(id)))
	a, err := queryOne(ctx, r.db, q, scanAttempt)
	if err != nil {
		return a, fmt.Errorf("get attempt %q: %w", id, err)
	}
	return a, nil
}

func (r *attemptRepo) Create(ctx context.Context, a mastery.Attempt) error {
	subtasks, err := encodeJSON(a.Subtasks)
	if err != nil {
		return err
	}
	var endedAt, accuracy any
	if a.EndedAt != nil {
		endedAt = a.EndedAt.UTC()
	}
	if a.Accuracy != nil {
		accuracy = *a.Accuracy
	}
	ins := builder.Insert(AttemptsTable.Name).
		Columns(attemptColumns...).
		Values(string(a.ID), string(a.UserID), string(a.TemplateID), string(a.VariantID),
			string(a.SessionID), string(a.Mode), a.StartedAt.UTC(), endedAt, string(a.Status),
			subtasks, a.CorrectCount, a.SubtaskCount, accuracy)
	if err := insertNew(ctx, r.db, ins); err != nil {
		return fmt.Errorf("create attempt %q: %w", a.ID, err)
	}
	return nil
}

func (r *attemptRepo) ListByTemplate(ctx context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]mastery.Attempt, error) {
	q := builder.Select(attemptColumns...).
		From(entsql.Table(AttemptsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", string(user)),
			entsql.EQ("template_id", string(tpl)),
		)).
		OrderBy("started_at", "id")
	out, err := queryAll(ctx, r.db, q, scanAttempt)
	if err != nil {
		return nil, fmt.Errorf("list attempts on %q: %w", tpl, err)
	}
	return out, nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, user ids.UserID) ([]mastery.Attempt, error) {
	q := builder.Select(attemptColumns...).
		From(entsql.Table(AttemptsTable.Name)).
		Where(entsql.EQ("user_id", string(user))).
		OrderBy("started_at", "id")
	out, err := queryAll(ctx, r.db, q, scanAttempt)
	if err != nil {
		return nil, fmt.Errorf("list attempts for %q: %w", user, err)
	}
	return out, nil
}

func scanAttempt(s scanner) (mastery.Attempt, error) {
	var (
		a                               mastery.Attempt
		id, user, tpl, variant, session string
		mode, status, subtasks          string
		endedAt                         sql.NullTime
		accuracy                        sql.NullFloat64
	)
	if err := s.Scan(&id, &user, &tpl, &variant, &session, &mode, &a.StartedAt, &endedAt,
		&status, &subtasks, &a.CorrectCount, &a.SubtaskCount, &accuracy); err != nil {
		return a, err
	}
	a.ID = ids.AttemptID(id)
	a.UserID = ids.UserID(user)
	a.TemplateID = ids.ExerciseTemplateID(tpl)
	a.VariantID = ids.ExerciseVariantID(variant)
	a.SessionID = ids.SessionID(session)
	a.Mode = mastery.Mode(mode)
	a.Status = mastery.Status(status)
	if endedAt.Valid {
		t := endedAt.Time
		a.EndedAt = &t
	}
	if accuracy.Valid {
		v := accuracy.Float64
		a.Accuracy = &v
	}
	if err := decodeJSON(subtasks, &a.Subtasks); err != nil {
		return a, err
	}
	return a, nil
}
