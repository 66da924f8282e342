package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/abhisek/studyloop/internal/conceptgraph"
	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

// Memory is an in-memory repository set. It is safe for concurrent use and
// hands out copies, so callers never alias stored records.
type Memory struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	concepts  map[ids.ConceptID]conceptgraph.ConceptNode
	exercises map[ids.ExerciseTemplateID]ExerciseTemplate
	attempts  map[ids.AttemptID]mastery.Attempt
	states    map[brickKey]mastery.State
	items     map[ids.SchedulerItemID]spacedrep.Item
}

type brickKey struct {
	user  ids.UserID
	brick ids.BrickRef
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		concepts:  make(map[ids.ConceptID]conceptgraph.ConceptNode),
		exercises: make(map[ids.ExerciseTemplateID]ExerciseTemplate),
		attempts:  make(map[ids.AttemptID]mastery.Attempt),
		states:    make(map[brickKey]mastery.State),
		items:     make(map[ids.SchedulerItemID]spacedrep.Item),
	}
}

// Repos returns repositories backed by this store.
func (m *Memory) Repos() Repos {
	return Repos{
		Concepts:    memConcepts{m},
		Exercises:   memExercises{m},
		Attempts:    memAttempts{m},
		BrickStates: memBrickStates{m},
		Items:       memItems{m},
	}
}

// InTx runs fn against this store and restores the previous contents when
// fn fails. Transactions run one at a time.
func (m *Memory) InTx(_ context.Context, fn func(Repos) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snap := memorySnapshot{
		concepts:  maps.Clone(m.concepts),
		exercises: maps.Clone(m.exercises),
		attempts:  maps.Clone(m.attempts),
		states:    maps.Clone(m.states),
		items:     maps.Clone(m.items),
	}
	m.mu.RUnlock()

	if err := fn(m.Repos()); err != nil {
		m.mu.Lock()
		m.concepts = snap.concepts
		m.exercises = snap.exercises
		m.attempts = snap.attempts
		m.states = snap.states
		m.items = snap.items
		m.mu.Unlock()
		return err
	}
	return nil
}

type memorySnapshot struct {
	concepts  map[ids.ConceptID]conceptgraph.ConceptNode
	exercises map[ids.ExerciseTemplateID]ExerciseTemplate
	attempts  map[ids.AttemptID]mastery.Attempt
	states    map[brickKey]mastery.State
	items     map[ids.SchedulerItemID]spacedrep.Item
}

func cloneConcept(n conceptgraph.ConceptNode) conceptgraph.ConceptNode {
	n.Prerequisites = slices.Clone(n.Prerequisites)
	return n
}

func cloneAttempt(a mastery.Attempt) mastery.Attempt {
	a.Subtasks = slices.Clone(a.Subtasks)
	for i := range a.Subtasks {
		a.Subtasks[i].ErrorTags = slices.Clone(a.Subtasks[i].ErrorTags)
	}
	if a.EndedAt != nil {
		t := *a.EndedAt
		a.EndedAt = &t
	}
	if a.Accuracy != nil {
		v := *a.Accuracy
		a.Accuracy = &v
	}
	return a
}

func cloneItem(it spacedrep.Item) spacedrep.Item {
	it.ConceptIDs = slices.Clone(it.ConceptIDs)
	if it.CompletedAt != nil {
		t := *it.CompletedAt
		it.CompletedAt = &t
	}
	return it
}

func cloneState(st mastery.State) mastery.State {
	if p := st.Mastery.LastPracticedAt; p != nil {
		t := *p
		st.Mastery.LastPracticedAt = &t
	}
	if p := st.Mastery.MasteredAt; p != nil {
		t := *p
		st.Mastery.MasteredAt = &t
	}
	return st
}

type memConcepts struct{ m *Memory }

func (r memConcepts) Get(_ context.Context, id ids.ConceptID) (conceptgraph.ConceptNode, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	n, ok := r.m.concepts[id]
	if !ok {
		return n, fmt.Errorf("get concept %q: %w", id, ErrNotFound)
	}
	return cloneConcept(n), nil
}

func (r memConcepts) ListByDomain(ctx context.Context, prefix ids.DomainID) ([]conceptgraph.ConceptNode, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []conceptgraph.ConceptNode
	for _, n := range all {
		if conceptgraph.InDomain(n, prefix) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r memConcepts) List(_ context.Context) ([]conceptgraph.ConceptNode, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]conceptgraph.ConceptNode, 0, len(r.m.concepts))
	for _, n := range r.m.concepts {
		out = append(out, cloneConcept(n))
	}
	slices.SortFunc(out, func(a, b conceptgraph.ConceptNode) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r memConcepts) Create(_ context.Context, n conceptgraph.ConceptNode) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.concepts[n.ID]; ok {
		return fmt.Errorf("create concept %q: %w", n.ID, ErrConflict)
	}
	r.m.concepts[n.ID] = cloneConcept(n)
	return nil
}

func (r memConcepts) Update(_ context.Context, n conceptgraph.ConceptNode) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	old, ok := r.m.concepts[n.ID]
	if !ok {
		return fmt.Errorf("update concept %q: %w", n.ID, ErrNotFound)
	}
	n.CreatedAt = old.CreatedAt
	r.m.concepts[n.ID] = cloneConcept(n)
	return nil
}

func (r memConcepts) Delete(_ context.Context, id ids.ConceptID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.concepts[id]; !ok {
		return fmt.Errorf("delete concept %q: %w", id, ErrNotFound)
	}
	delete(r.m.concepts, id)
	return nil
}

type memExercises struct{ m *Memory }

func (r memExercises) Get(_ context.Context, id ids.ExerciseTemplateID) (ExerciseTemplate, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.exercises[id]
	if !ok {
		return t, fmt.Errorf("get exercise %q: %w", id, ErrNotFound)
	}
	t.ConceptIDs = slices.Clone(t.ConceptIDs)
	return t, nil
}

func (r memExercises) List(_ context.Context) ([]ExerciseTemplate, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]ExerciseTemplate, 0, len(r.m.exercises))
	for _, t := range r.m.exercises {
		t.ConceptIDs = slices.Clone(t.ConceptIDs)
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b ExerciseTemplate) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r memExercises) ListByConcept(ctx context.Context, id ids.ConceptID) ([]ExerciseTemplate, error) {
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

func (r memExercises) Create(_ context.Context, t ExerciseTemplate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.exercises[t.ID]; ok {
		return fmt.Errorf("create exercise %q: %w", t.ID, ErrConflict)
	}
	t.ConceptIDs = slices.Clone(t.ConceptIDs)
	r.m.exercises[t.ID] = t
	return nil
}

func (r memExercises) Update(_ context.Context, t ExerciseTemplate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	old, ok := r.m.exercises[t.ID]
	if !ok {
		return fmt.Errorf("update exercise %q: %w", t.ID, ErrNotFound)
	}
	t.CreatedAt = old.CreatedAt
	t.ConceptIDs = slices.Clone(t.ConceptIDs)
	r.m.exercises[t.ID] = t
	return nil
}

func (r memExercises) Delete(_ context.Context, id ids.ExerciseTemplateID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.exercises[id]; !ok {
		return fmt.Errorf("delete exercise %q: %w", id, ErrNotFound)
	}
	delete(r.m.exercises, id)
	return nil
}

type memAttempts struct{ m *Memory }

func (r memAttempts) Get(_ context.Context, id ids.AttemptID) (mastery.Attempt, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	a, ok := r.m.attempts[id]
	if !ok {
		return a, fmt.Errorf("get attempt %q: %w", id, ErrNotFound)
	}
	return cloneAttempt(a), nil
}

func (r memAttempts) Create(_ context.Context, a mastery.Attempt) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.attempts[a.ID]; ok {
		return fmt.Errorf("create attempt %q: %w", a.ID, ErrConflict)
	}
	r.m.attempts[a.ID] = cloneAttempt(a)
	return nil
}

func (r memAttempts) ListByTemplate(_ context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]mastery.Attempt, error) {
	return r.filter(func(a mastery.Attempt) bool {
		return a.UserID == user && a.TemplateID == tpl
	}), nil
}

func (r memAttempts) ListByUser(_ context.Context, user ids.UserID) ([]mastery.Attempt, error) {
	return r.filter(func(a mastery.Attempt) bool { return a.UserID == user }), nil
}

func (r memAttempts) filter(keep func(mastery.Attempt) bool) []mastery.Attempt {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []mastery.Attempt
	for _, a := range r.m.attempts {
		if keep(a) {
			out = append(out, cloneAttempt(a))
		}
	}
	slices.SortFunc(out, func(a, b mastery.Attempt) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

type memBrickStates struct{ m *Memory }

func (r memBrickStates) Get(_ context.Context, user ids.UserID, brick ids.BrickRef) (mastery.State, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	st, ok := r.m.states[brickKey{user, brick}]
	if !ok {
		return st, fmt.Errorf("get brick state %s: %w", brick, ErrNotFound)
	}
	return cloneState(st), nil
}

func (r memBrickStates) Upsert(_ context.Context, st mastery.State) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := brickKey{st.UserID, st.Brick}
	if old, ok := r.m.states[key]; ok {
		st.ID = old.ID
	}
	r.m.states[key] = cloneState(st)
	return nil
}

func (r memBrickStates) ListByUser(_ context.Context, user ids.UserID) ([]mastery.State, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []mastery.State
	for key, st := range r.m.states {
		if key.user == user {
			out = append(out, cloneState(st))
		}
	}
	slices.SortFunc(out, func(a, b mastery.State) int {
		if c := cmp.Compare(a.Brick.Kind, b.Brick.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Brick.ID, b.Brick.ID)
	})
	return out, nil
}

type memItems struct{ m *Memory }

func (r memItems) Get(_ context.Context, id ids.SchedulerItemID) (spacedrep.Item, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	it, ok := r.m.items[id]
	if !ok {
		return it, fmt.Errorf("get scheduler item %q: %w", id, ErrNotFound)
	}
	return cloneItem(it), nil
}

func (r memItems) Create(_ context.Context, it spacedrep.Item) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.items[it.ID]; ok {
		return fmt.Errorf("create scheduler item %q: %w", it.ID, ErrConflict)
	}
	r.m.items[it.ID] = cloneItem(it)
	return nil
}

func (r memItems) Update(_ context.Context, it spacedrep.Item) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	old, ok := r.m.items[it.ID]
	if !ok {
		return fmt.Errorf("update scheduler item %q: %w", it.ID, ErrNotFound)
	}
	old.ScheduledFor = it.ScheduledFor
	old.Reason = it.Reason
	old.Priority = it.Priority
	old.Completed = it.Completed
	old.CompletedAt = it.CompletedAt
	old.CompletedByAttemptID = it.CompletedByAttemptID
	old.UpdatedAt = it.UpdatedAt
	r.m.items[it.ID] = cloneItem(old)
	return nil
}

func (r memItems) Delete(_ context.Context, id ids.SchedulerItemID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.items[id]; !ok {
		return fmt.Errorf("delete scheduler item %q: %w", id, ErrNotFound)
	}
	delete(r.m.items, id)
	return nil
}

func (r memItems) ListPending(_ context.Context, user ids.UserID) ([]spacedrep.Item, error) {
	return r.filter(func(it spacedrep.Item) bool {
		return it.UserID == user && !it.Completed
	}), nil
}

func (r memItems) ListByTemplate(_ context.Context, user ids.UserID, tpl ids.ExerciseTemplateID) ([]spacedrep.Item, error) {
	return r.filter(func(it spacedrep.Item) bool {
		return it.UserID == user && it.TemplateID == tpl
	}), nil
}

func (r memItems) filter(keep func(spacedrep.Item) bool) []spacedrep.Item {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []spacedrep.Item
	for _, it := range r.m.items {
		if keep(it) {
			out = append(out, cloneItem(it))
		}
	}
	slices.SortFunc(out, func(a, b spacedrep.Item) int {
		if c := a.ScheduledFor.Compare(b.ScheduledFor); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
