package store

import (
	"context"
	"fmt"
	"slices"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/ids"
)

var exerciseColumns = []string{"id", "title", "concept_ids", "difficulty", "created_at"}

// exerciseRepo implements ExerciseRepo on SQLite.
type exerciseRepo struct {
	db dbtx
}

func (r *exerciseRepo) Get(ctx context.Context, id ids.ExerciseTemplateID) (ExerciseTemplate, error) {
	q := builder.Select(exerciseColumns...).
		From(entsql.Table(ExerciseTemplatesTable.Name)).
		Where(entsql.EQ("id", string(id)))
	t, err := queryOne(ctx, r.db, q, scanExercise)
	if err != nil {
		return t, fmt.Errorf("get exercise %q: %w", id, err)
	}
	return t, nil
}

func (r *exerciseRepo) List(ctx context.Context) ([]ExerciseTemplate, error) {
	q := builder.Select(exerciseColumns...).
		From(entsql.Table(ExerciseTemplatesTable.Name)).
		OrderBy("id")
	out, err := queryAll(ctx, r.db, q, scanExercise)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return out, nil
}

// ListByConcept filters in Go; concept links live in a JSON column.
func (r *exerciseRepo) ListByConcept(ctx context.Context, id ids.ConceptID) ([]ExerciseTemplate, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []ExerciseTemplate
	for _, t := range all {
		if slices.Contains(t.ConceptIDs, id) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *exerciseRepo) Create(ctx context.Context, t ExerciseTemplate) error {
	concepts, err := encodeJSON(t.ConceptIDs)
	if err != nil {
		return err
	}
	ins := builder.Insert(ExerciseTemplatesTable.Name).
		Columns(exerciseColumns...).
		Values(string(t.ID), t.Title, concepts, t.Difficulty, t.CreatedAt.UTC())
	if err := insertNew(ctx, r.db, ins); err != nil {
		return fmt.Errorf("create exercise %q: %w", t.ID, err)
	}
	return nil
}

func (r *exerciseRepo) Update(ctx context.Context, t ExerciseTemplate) error {
	concepts, err := encodeJSON(t.ConceptIDs)
	if err != nil {
		return err
	}
	upd := builder.Update(ExerciseTemplatesTable.Name).
		Set("title", t.Title).
		Set("concept_ids", concepts).
		Set("difficulty", t.Difficulty).
		Where(entsql.EQ("id", string(t.ID)))
	if err := mustAffect(exec(ctx, r.db, upd)); err != nil {
		return fmt.Errorf("update exercise %q: %w", t.ID, err)
	}
	return nil
}

func (r *exerciseRepo) Delete(ctx context.Context, id ids.ExerciseTemplateID) error {
	del := builder.Delete(ExerciseTemplatesTable.Name).Where(entsql.EQ("id", string(id)))
	if err := mustAffect(exec(ctx, r.db, del)); err != nil {
		return fmt.Errorf("delete exercise %q: %w", id, err)
	}
	return nil
}

func scanExercise(s scanner) (ExerciseTemplate, error) {
	var (
		t        ExerciseTemplate
		id       string
		concepts string
	)
	if err := s.Scan(&id, &t.Title, &concepts, &t.Difficulty, &t.CreatedAt); err != nil {
		return t, err
	}
	t.ID = ids.ExerciseTemplateID(id)
	if err := decodeJSON(concepts, &t.ConceptIDs); err != nil {
		return t, err
	}
	return t, nil
}
