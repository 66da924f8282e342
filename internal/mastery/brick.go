package mastery

import (
	"math"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
)

// DefaultDecay is the per-step recency decay for weighted accuracy.
const DefaultDecay = 0.8

// Config holds the tunables of the mastery model. Zero fields fall back to
// the package defaults.
type Config struct {
	Decay           float64 `mapstructure:"decay"`
	StabilityWindow int     `mapstructure:"stability_window"`
	VarianceCeiling float64 `mapstructure:"variance_ceiling"`
	TrendRecent     int     `mapstructure:"trend_recent"`
	TrendHistorical int     `mapstructure:"trend_historical"`
}

// DefaultConfig returns the standard model parameters.
func DefaultConfig() Config {
	return Config{
		Decay:           DefaultDecay,
		StabilityWindow: DefaultStabilityWindow,
		VarianceCeiling: StabilityVarianceCeiling,
		TrendRecent:     DefaultTrendRecent,
		TrendHistorical: DefaultTrendHistorical,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Decay <= 0 || c.Decay > 1 {
		c.Decay = d.Decay
	}
	if c.StabilityWindow <= 0 {
		c.StabilityWindow = d.StabilityWindow
	}
	if c.VarianceCeiling <= 0 {
		c.VarianceCeiling = d.VarianceCeiling
	}
	if c.TrendRecent <= 0 {
		c.TrendRecent = d.TrendRecent
	}
	if c.TrendHistorical <= 0 {
		c.TrendHistorical = d.TrendHistorical
	}
	return c
}

// CramSessions is the set of session ids the session collaborator considers
// cram sessions.
type CramSessions map[ids.SessionID]struct{}

// NewCramSessions builds a set from the given ids.
func NewCramSessions(sessionIDs ...ids.SessionID) CramSessions {
	s := make(CramSessions, len(sessionIDs))
	for _, id := range sessionIDs {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a cram session.
func (s CramSessions) Has(id ids.SessionID) bool {
	_, ok := s[id]
	return ok
}

// BrickMastery is the derived mastery snapshot for one (user, brick) pair.
type BrickMastery struct {
	MasteryScore      int           `json:"mastery_score"`
	StabilityScore    int           `json:"stability_score"`
	AvgAccuracy       float64       `json:"avg_accuracy"`
	MedianTime        time.Duration `json:"median_time"`
	BestTime          time.Duration `json:"best_time"`
	WorstTime         time.Duration `json:"worst_time"`
	LastPracticedAt   *time.Time    `json:"last_practiced_at,omitempty"`
	TotalAttempts     int           `json:"total_attempts"`
	TotalVariants     int           `json:"total_variants"`
	CramSessionsCount int           `json:"cram_sessions_count"`
	CorrectStreak     int           `json:"correct_streak"`
	Trend             Trend         `json:"trend"`
	MasteredAt        *time.Time    `json:"mastered_at,omitempty"`
}

// Mastered reports whether the current score meets the threshold.
func (m BrickMastery) Mastered() bool {
	return IsMastered(m.MasteryScore)
}

// Update recomputes a brick's mastery from its full attempt history.
// Everything is derived from scratch except CramSessionsCount, which carries
// over from prev and grows by one for each attempt in a cram session, and
// MasteredAt, which once set is never cleared. In-progress attempts are
// ignored.
func Update(prev *BrickMastery, attempts []Attempt, cram CramSessions, now time.Time, cfg Config) BrickMastery {
	cfg = cfg.withDefaults()

	finished := make([]Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Status != StatusInProgress {
			finished = append(finished, a)
		}
	}

	var next BrickMastery
	if prev != nil {
		next.CramSessionsCount = prev.CramSessionsCount
		if prev.MasteredAt != nil {
			at := *prev.MasteredAt
			next.MasteredAt = &at
		}
	}

	next.TotalAttempts = len(finished)
	if len(finished) == 0 {
		next.Trend = TrendNew
		return next
	}

	wa := WeightedAccuracy(finished, cfg.Decay)
	stability := StabilityScore(finished, cfg.StabilityWindow, cfg.VarianceCeiling)
	speed := SpeedBonus(finished)
	times := ComputeTimeStats(finished)

	next.AvgAccuracy = wa
	next.StabilityScore = int(math.Round(stability))
	next.MasteryScore = MasteryScore(wa, stability, speed)
	next.MedianTime = times.Median
	next.BestTime = times.Best
	next.WorstTime = times.Worst
	next.CorrectStreak = CorrectStreak(finished)
	next.Trend = DetectTrend(finished, cfg.TrendRecent, cfg.TrendHistorical)

	last := recentFirst(finished)[0].EndTime()
	next.LastPracticedAt = &last

	variants := make(map[ids.ExerciseVariantID]struct{})
	for _, a := range finished {
		if a.VariantID != "" {
			variants[a.VariantID] = struct{}{}
		}
		if a.SessionID != "" && cram.Has(a.SessionID) {
			next.CramSessionsCount++
		}
	}
	next.TotalVariants = len(variants)

	if next.MasteredAt == nil && next.Mastered() {
		at := now
		next.MasteredAt = &at
	}
	return next
}

// NewlyMastered reports whether next crossed the mastery threshold for the
// first time relative to prev.
func NewlyMastered(prev *BrickMastery, next BrickMastery) bool {
	return next.MasteredAt != nil && (prev == nil || prev.MasteredAt == nil)
}

// State is the persisted mastery record for one user and brick.
type State struct {
	ID               ids.BrickStateID `json:"id"`
	UserID           ids.UserID       `json:"user_id"`
	Brick            ids.BrickRef     `json:"brick"`
	Mastery          BrickMastery     `json:"mastery"`
	LastIntervalDays int              `json:"last_interval_days"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
