// Package progress ties the concept graph, mastery engine and scheduler to
// the repositories. It owns every side effect: reading history, persisting
// attempts, mastery states and review items, caching and metrics.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/clock"
	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/metrics"
	"github.com/abhisek/studyloop/internal/platform/logger"
	"github.com/abhisek/studyloop/internal/store"
)

var (
	// ErrWouldCreateCycle is returned when a new prerequisite edge would
	// close a loop in the concept graph.
	ErrWouldCreateCycle = errors.New("prerequisite would create a cycle")

	// ErrInvalidGraph is wrapped by *ValidationError.
	ErrInvalidGraph = errors.New("invalid concept graph")
)

// ValidationError lists the integrity issues that blocked a graph change.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidGraph, strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidGraph }

// MasteryCache is a read-through cache for mastery snapshots.
type MasteryCache interface {
	GetMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef) (mastery.BrickMastery, bool, error)
	SetMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef, bm mastery.BrickMastery) error
	InvalidateMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef) error
}

// Options tunes the engine.
type Options struct {
	Mastery    mastery.Config
	Interleave bool
	QueueLimit int
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		Mastery:    mastery.DefaultConfig(),
		Interleave: true,
		QueueLimit: 20,
	}
}

// Deps are the collaborators a Service works with. Only Repos is required.
// Without Tx, multi-record writes run directly against Repos and are not
// atomic.
type Deps struct {
	Repos   store.Repos
	Tx      store.Transactor
	Clock   clock.Clock
	IDs     ids.Source
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Cache   MasteryCache
}

// Service runs learning-progress flows for any number of users.
type Service struct {
	repos   store.Repos
	tx      store.Transactor
	clock   clock.Clock
	ids     ids.Source
	log     *logger.Logger
	metrics *metrics.Metrics
	cache   MasteryCache
	opts    Options
}

// NewService creates a service, filling unset collaborators with the system
// clock, random ids and a no-op logger.
func NewService(d Deps, opts Options) *Service {
	s := &Service{
		repos:   d.Repos,
		tx:      d.Tx,
		clock:   d.Clock,
		ids:     d.IDs,
		log:     d.Logger,
		metrics: d.Metrics,
		cache:   d.Cache,
		opts:    opts,
	}
	if s.tx == nil {
		s.tx = directTx{d.Repos}
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.ids == nil {
		s.ids = ids.UUIDSource{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Mastery returns the stored mastery of a brick, consulting the cache first.
// ok is false when the user has never practiced the brick.
func (s *Service) Mastery(ctx context.Context, user ids.UserID, brick ids.BrickRef) (bm mastery.BrickMastery, ok bool, err error) {
	if s.cache != nil {
		bm, hit, err := s.cache.GetMastery(ctx, user, brick)
		if err != nil {
			s.log.Warn("mastery cache read failed", "brick", brick.String(), "error", err)
		} else if hit {
			return bm, true, nil
		}
	}

	st, err := s.repos.BrickStates.Get(ctx, user, brick)
	if errors.Is(err, store.ErrNotFound) {
		return mastery.BrickMastery{}, false, nil
	}
	if err != nil {
		return mastery.BrickMastery{}, false, err
	}
	s.cacheMastery(ctx, user, brick, st.Mastery)
	return st.Mastery, true, nil
}

// States returns every mastery state held for user.
func (s *Service) States(ctx context.Context, user ids.UserID) ([]mastery.State, error) {
	return s.repos.BrickStates.ListByUser(ctx, user)
}

func (s *Service) cacheMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef, bm mastery.BrickMastery) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetMastery(ctx, user, brick, bm); err != nil {
		s.log.Warn("mastery cache write failed", "brick", brick.String(), "error", err)
	}
}

// forgetMastery drops cached snapshots so the next read goes to the store.
func (s *Service) forgetMastery(ctx context.Context, user ids.UserID, bricks []ids.BrickRef) {
	if s.cache == nil {
		return
	}
	for _, b := range bricks {
		if err := s.cache.InvalidateMastery(ctx, user, b); err != nil {
			s.log.Warn("mastery cache invalidate failed", "brick", b.String(), "error", err)
		}
	}
}

type directTx struct {
	repos store.Repos
}

func (d directTx) InTx(_ context.Context, fn func(store.Repos) error) error {
	return fn(d.repos)
}
