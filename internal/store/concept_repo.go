package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyloop/internal/conceptgraph"
	"github.com/abhisek/studyloop/internal/ids"
)

var conceptColumns = []string{
	"id", "domain_id", "name", "slug", "kind", "difficulty", "importance",
	"prerequisites", "created_at", "updated_at",
}

// conceptRepo implements ConceptRepo on SQLite.
type conceptRepo struct {
	db dbtx
}

func (r *conceptRepo) Get(ctx context.Context, id ids.ConceptID) (conceptgraph.ConceptNode, error) {
	q := builder.Select(conceptColumns...).
		From(entsql.Table(ConceptsTable.Name)).
		Where(entsql.EQ("id", string(id)))
	n, err := queryOne(ctx, r.db, q, scanConcept)
	if err != nil {
		return n, fmt.Errorf("get concept %q: %w", id, err)
	}
	return n, nil
}

func (r *conceptRepo) ListByDomain(ctx context.Context, prefix ids.DomainID) ([]conceptgraph.ConceptNode, error) {
	p := strings.ToLower(string(prefix))
	q := builder.Select(conceptColumns...).
		From(entsql.Table(ConceptsTable.Name)).
		Where(entsql.Or(
			entsql.EQ("domain_id", p),
			entsql.HasPrefix("domain_id", p+"."),
		)).
		OrderBy("id")
	nodes, err := queryAll(ctx, r.db, q, scanConcept)
	if err != nil {
		return nil, fmt.Errorf("list concepts in %q: %w", prefix, err)
	}
	return nodes, nil
}

func (r *conceptRepo) List(ctx context.Context) ([]conceptgraph.ConceptNode, error) {
	q := builder.Select(conceptColumns...).
		From(entsql.Table(ConceptsTable.Name)).
		OrderBy("id")
	nodes, err := queryAll(ctx, r.db, q, scanConcept)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	return nodes, nil
}

func (r *conceptRepo) Create(ctx context.Context, n conceptgraph.ConceptNode) error {
	prereqs, err := encodeJSON(n.Prerequisites)
	if err != nil {
		return err
	}
	ins := builder.Insert(ConceptsTable.Name).
		Columns(conceptColumns...).
		Values(string(n.ID), string(n.DomainID), n.Name, n.Slug, string(n.Kind),
			n.Difficulty, n.Importance, prereqs, n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if err := insertNew(ctx, r.db, ins); err != nil {
		return fmt.Errorf("create concept %q: %w", n.ID, err)
	}
	return nil
}

func (r *conceptRepo) Update(ctx context.Context, n conceptgraph.ConceptNode) error {
	prereqs, err := encodeJSON(n.Prerequisites)
	if err != nil {
		return err
	}
	upd := builder.Update(ConceptsTable.Name).
		Set("domain_id", string(n.DomainID)).
		Set("name", n.Name).
		Set("slug", n.Slug).
		Set("kind", string(n.Kind)).
		Set("difficulty", n.Difficulty).
		Set("importance", n.Importance).
		Set("prerequisites", prereqs).
		Set("updated_at", n.UpdatedAt.UTC()).
		Where(entsql.EQ("id", string(n.ID)))
	if err := mustAffect(exec(ctx, r.db, upd)); err != nil {
		return fmt.Errorf("update concept %q: %w", n.ID, err)
	}
	return nil
}

func (r *conceptRepo) Delete(ctx context.Context, id ids.ConceptID) error {
	del := builder.Delete(ConceptsTable.Name).Where(entsql.EQ("id", string(id)))
	if err := mustAffect(exec(ctx, r.db, del)); err != nil {
		return fmt.Errorf("delete concept %q: %w", id, err)
	}
	return nil
}

func scanConcept(s scanner) (conceptgraph.ConceptNode, error) {
	var (
		n       conceptgraph.ConceptNode
		id      string
		domain  string
		kind    string
		prereqs string
	)
	if err := s.Scan(&id, &domain, &n.Name, &n.Slug, &kind, &n.Difficulty, &n.Importance,
		&prereqs, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return n, err
	}
	n.ID = ids.ConceptID(id)
	n.DomainID = ids.DomainID(domain)
	n.Kind = conceptgraph.ConceptKind(kind)
	if err := decodeJSON(prereqs, &n.Prerequisites); err != nil {
		return n, err
	}
	return n, nil
}
