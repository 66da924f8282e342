package spacedrep

import (
	"time"

	"github.com/abhisek/studyloop/internal/mastery"
)

const (
	overdueBase       = 100
	overduePerDay     = 5
	overdueMaxBonus   = 50
	dueTodayPriority  = 50
	dueInWeekPriority = 10

	lowMasteryBonus    = 20
	mediumMasteryBonus = 10
	decliningBonus     = 15
)

var reasonBonus = map[Reason]int{
	ReasonCramFollowup:  30,
	ReasonErrorRecovery: 40,
}

// Priority scores how urgently an item should be reviewed. Higher is more
// urgent. The score is additive: due-date urgency, a bonus for the reason,
// and bonuses for weak or declining mastery when bm is known.
func Priority(scheduledFor, now time.Time, reason Reason, bm *mastery.BrickMastery) int {
	p := 0
	until := scheduledFor.Sub(now)
	switch {
	case until < 0:
		daysOverdue := int(-until / (24 * time.Hour))
		p += overdueBase + min(overdueMaxBonus, daysOverdue*overduePerDay)
	case until < 24*time.Hour:
		p += dueTodayPriority
	case until < 7*24*time.Hour:
		p += dueInWeekPriority
	}

	p += reasonBonus[reason]

	if bm != nil {
		switch {
		case bm.MasteryScore < 50:
			p += lowMasteryBonus
		case bm.MasteryScore < mastery.MasteryThreshold:
			p += mediumMasteryBonus
		}
		if bm.Trend == mastery.TrendDeclining {
			p += decliningBonus
		}
	}
	return p
}
