package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/abhisek/studyloop/internal/conceptgraph"
	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/store"
)

// Graph builds a graph over every stored concept.
func (s *Service) Graph(ctx context.Context) (*conceptgraph.Graph, error) {
	nodes, err := s.repos.Concepts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	return conceptgraph.New(nodes), nil
}

// AddConcept stores a new concept. The graph including the new node must
// validate; otherwise a *ValidationError is returned and nothing is written.
func (s *Service) AddConcept(ctx context.Context, n conceptgraph.ConceptNode) (conceptgraph.ConceptNode, error) {
	now := s.clock.Now()
	n = withConceptDefaults(n)
	n.CreatedAt = now
	n.UpdatedAt = now

	existing, err := s.repos.Concepts.List(ctx)
	if err != nil {
		return n, fmt.Errorf("load concepts: %w", err)
	}
	if res := conceptgraph.New(append(existing, n)).Validate(); !res.Valid {
		return n, &ValidationError{Issues: res.Issues}
	}
	if err := s.repos.Concepts.Create(ctx, n); err != nil {
		return n, err
	}
	s.log.Info("concept added", "concept", n.ID, "domain", n.DomainID)
	return n, nil
}

// AddPrerequisite records that from requires to. Adding an edge that would
// close a cycle returns ErrWouldCreateCycle; an existing edge is a no-op.
func (s *Service) AddPrerequisite(ctx context.Context, from, to ids.ConceptID) error {
	node, err := s.repos.Concepts.Get(ctx, from)
	if err != nil {
		return err
	}
	if _, err := s.repos.Concepts.Get(ctx, to); err != nil {
		return err
	}
	if slices.Contains(node.Prerequisites, to) {
		return nil
	}

	g, err := s.Graph(ctx)
	if err != nil {
		return err
	}
	if g.WouldCreateCycle(from, to) {
		s.metrics.ObserveRejectedEdge()
		s.log.Warn("prerequisite rejected", "from", from, "to", to)
		return fmt.Errorf("%s requires %s: %w", from, to, ErrWouldCreateCycle)
	}

	node.Prerequisites = append(node.Prerequisites, to)
	nodes := replaceNode(g.Nodes(), node)
	if res := conceptgraph.New(nodes).Validate(); !res.Valid {
		return &ValidationError{Issues: res.Issues}
	}

	node.UpdatedAt = s.clock.Now()
	if err := s.repos.Concepts.Update(ctx, node); err != nil {
		return err
	}
	s.log.Info("prerequisite added", "from", from, "to", to)
	return nil
}

// ValidateCatalog parses a YAML catalog and checks its graph integrity on
// its own, without touching stored concepts.
func ValidateCatalog(r io.Reader) ([]conceptgraph.ConceptNode, conceptgraph.ValidationResult, error) {
	nodes, err := conceptgraph.LoadCatalog(r)
	if err != nil {
		return nil, conceptgraph.ValidationResult{}, err
	}
	return nodes, conceptgraph.New(nodes).Validate(), nil
}

// ImportResult counts what ImportCatalog wrote.
type ImportResult struct {
	Created int
	Updated int
}

// ImportCatalog merges a YAML catalog into the stored concepts. Catalog
// entries replace stored concepts with the same id. The merged graph must
// validate before anything is written, and the writes land together.
func (s *Service) ImportCatalog(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	incoming, err := conceptgraph.LoadCatalog(r)
	if err != nil {
		return res, err
	}
	existing, err := s.repos.Concepts.List(ctx)
	if err != nil {
		return res, fmt.Errorf("load concepts: %w", err)
	}

	stored := make(map[ids.ConceptID]conceptgraph.ConceptNode, len(existing))
	for _, n := range existing {
		stored[n.ID] = n
	}
	merged := existing
	var fresh []conceptgraph.ConceptNode
	for _, n := range incoming {
		if _, ok := stored[n.ID]; ok {
			merged = replaceNode(merged, n)
		} else {
			fresh = append(fresh, n)
		}
	}
	merged = append(merged, fresh...)
	if v := conceptgraph.New(merged).Validate(); !v.Valid {
		return res, &ValidationError{Issues: v.Issues}
	}

	now := s.clock.Now()
	err = s.tx.InTx(ctx, func(r store.Repos) error {
		res = ImportResult{}
		for _, n := range incoming {
			n = withConceptDefaults(n)
			n.UpdatedAt = now
			if prev, ok := stored[n.ID]; ok {
				n.CreatedAt = prev.CreatedAt
				if err := r.Concepts.Update(ctx, n); err != nil {
					return err
				}
				res.Updated++
				continue
			}
			n.CreatedAt = now
			if err := r.Concepts.Create(ctx, n); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.log.Info("catalog imported", "created", res.Created, "updated", res.Updated)
	return res, nil
}

// LearningPath returns the concepts user still has to master on the way to
// target, prerequisites first. A concept counts as mastered while its
// current score meets the threshold.
func (s *Service) LearningPath(ctx context.Context, user ids.UserID, target ids.ConceptID) ([]conceptgraph.ConceptNode, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	mastered, err := s.masteredConcepts(ctx, user)
	if err != nil {
		return nil, err
	}
	return g.LearningPath(target, mastered)
}

// AvailableConcepts returns the concepts whose prerequisites user has
// mastered but which are not mastered yet.
func (s *Service) AvailableConcepts(ctx context.Context, user ids.UserID) ([]conceptgraph.ConceptNode, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	mastered, err := s.masteredConcepts(ctx, user)
	if err != nil {
		return nil, err
	}
	return g.Available(mastered)
}

func (s *Service) masteredConcepts(ctx context.Context, user ids.UserID) (conceptgraph.IDSet, error) {
	states, err := s.repos.BrickStates.ListByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}
	mastered := make(conceptgraph.IDSet)
	for _, st := range states {
		if st.Brick.Kind == ids.BrickConcept && st.Mastery.Mastered() {
			mastered[ids.ConceptID(st.Brick.ID)] = struct{}{}
		}
	}
	return mastered, nil
}

func requireConcepts(ctx context.Context, concepts store.ConceptRepo, conceptIDs []ids.ConceptID) error {
	for _, id := range conceptIDs {
		if _, err := concepts.Get(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("concept %q: %w", id, conceptgraph.ErrUnknownConcept)
			}
			return err
		}
	}
	return nil
}

func withConceptDefaults(n conceptgraph.ConceptNode) conceptgraph.ConceptNode {
	if n.Slug == "" {
		n.Slug = conceptgraph.SlugFor(n.ID, n.Name)
	}
	if n.Kind == "" {
		n.Kind = conceptgraph.KindDefinition
	}
	return n
}

func replaceNode(nodes []conceptgraph.ConceptNode, n conceptgraph.ConceptNode) []conceptgraph.ConceptNode {
	out := slices.Clone(nodes)
	for i := range out {
		if out[i].ID == n.ID {
			out[i] = n
		}
	}
	return out
}
