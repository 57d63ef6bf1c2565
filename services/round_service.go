package services

import (
	"time"

	"github.com/jonboulle/clockwork"

	"survive-sports/models"
)

// RoundTime pairs a round with the wall-clock moment its first game tips
// off. Submissions for the round lock at that moment and its results become
// viewable.
type RoundTime struct {
	RoundOf models.Round
	Start   time.Time
}

// RoundSchedule is the tournament's full lock schedule, ordered from the
// round of 64 down to the championship game.
type RoundSchedule []RoundTime

// DefaultRoundSchedule returns the 2019 tournament schedule, Eastern time.
func DefaultRoundSchedule() RoundSchedule {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return RoundSchedule{
		{RoundOf: models.RoundOf64, Start: time.Date(2019, time.March, 21, 12, 0, 0, 0, loc)},
		{RoundOf: models.RoundOf32, Start: time.Date(2019, time.March, 23, 12, 0, 0, 0, loc)},
		{RoundOf: models.RoundOf16, Start: time.Date(2019, time.March, 28, 19, 0, 0, 0, loc)},
		{RoundOf: models.RoundOf8, Start: time.Date(2019, time.March, 30, 18, 0, 0, 0, loc)},
		{RoundOf: models.RoundOf4, Start: time.Date(2019, time.April, 6, 18, 0, 0, 0, loc)},
		{RoundOf: models.RoundOf2, Start: time.Date(2019, time.April, 8, 21, 0, 0, 0, loc)},
	}
}

// RoundService answers which round is open for picking and which rounds'
// results are visible. Pure function of the injected clock and the static
// schedule; no mutation, safe for concurrent use.
type RoundService struct {
	schedule RoundSchedule
	clock    clockwork.Clock
}

func NewRoundService(schedule RoundSchedule, clock clockwork.Clock) *RoundService {
	return &RoundService{schedule: schedule, clock: clock}
}

// AvailableRound returns the largest round whose lock time is still in the
// future, or 0 once every round has locked.
func (s *RoundService) AvailableRound() models.Round {
	now := s.clock.Now()
	for _, rt := range s.schedule {
		if now.Before(rt.Start) {
			return rt.RoundOf
		}
	}
	return 0
}

// ViewableRound returns the smallest round whose lock time has passed, or 0
// if the tournament has not started.
func (s *RoundService) ViewableRound() models.Round {
	now := s.clock.Now()
	for i := len(s.schedule) - 1; i >= 0; i-- {
		rt := s.schedule[i]
		if !now.Before(rt.Start) {
			return rt.RoundOf
		}
	}
	return 0
}

// IsAvailableRound reports whether the round is still open for submission.
func (s *RoundService) IsAvailableRound(round models.Round) bool {
	available := s.AvailableRound()
	return available != 0 && round <= available
}

// IsViewableRound reports whether the round's results are publicly
// revealed. Nothing is viewable before the tournament starts.
func (s *RoundService) IsViewableRound(round models.Round) bool {
	viewable := s.ViewableRound()
	return viewable != 0 && round >= viewable
}

// HasGameStarted reports whether the round of 64 has locked.
func (s *RoundService) HasGameStarted() bool {
	return !s.IsAvailableRound(models.RoundOf64)
}
