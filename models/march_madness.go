package models

import (
	"errors"
	"fmt"
	"time"
)

// Region identifies one of the four tournament regions.
type Region string

const (
	RegionEast    Region = "east"
	RegionSouth   Region = "south"
	RegionWest    Region = "west"
	RegionMidwest Region = "midwest"
)

func (r Region) Valid() bool {
	switch r {
	case RegionEast, RegionSouth, RegionWest, RegionMidwest:
		return true
	}
	return false
}

// Round is a bracket stage identified by how many teams remain entering it.
type Round int

const (
	RoundOf64 Round = 64
	RoundOf32 Round = 32
	RoundOf16 Round = 16
	RoundOf8  Round = 8
	RoundOf4  Round = 4
	RoundOf2  Round = 2
)

// Rounds lists every bracket stage in play order.
var Rounds = []Round{RoundOf64, RoundOf32, RoundOf16, RoundOf8, RoundOf4, RoundOf2}

// requiredPicks maps a round to how many teams must be submitted for it:
// four region winners for the round of 64, then narrowing down to a single
// champion pick.
var requiredPicks = map[Round]int{
	RoundOf64: 4,
	RoundOf32: 2,
	RoundOf16: 1,
	RoundOf8:  1,
	RoundOf4:  1,
	RoundOf2:  1,
}

func (r Round) Valid() bool {
	_, ok := requiredPicks[r]
	return ok
}

// Index returns the round's position in a pick entry's choices array,
// or -1 for an invalid round.
func (r Round) Index() int {
	for i, round := range Rounds {
		if round == r {
			return i
		}
	}
	return -1
}

// RequiredPicks returns how many choices a submission for this round must
// contain. Zero for invalid rounds.
func (r Round) RequiredPicks() int {
	return requiredPicks[r]
}

// Validation errors for round choice submissions. These are field-level
// error kinds checked at the system boundary.
var (
	ErrInvalidRound    = errors.New("invalid round number")
	ErrInvalidRegion   = errors.New("invalid region")
	ErrInvalidSeed     = errors.New("seed must be between 1 and 16")
	ErrTeamRequired    = errors.New("team name is required")
	ErrWrongPickCount  = errors.New("wrong number of choices for round")
	ErrDuplicateRegion = errors.New("duplicate region in round choices")
	ErrDuplicateTeam   = errors.New("duplicate team in round choices")
)

// Choice is one tournament team with its live results facts. WinningRounds
// records every round the team has already won, so a team can be credited
// for a round it survived even after being marked eliminated overall.
type Choice struct {
	Region        Region  `json:"region" bson:"region"`
	Seed          int     `json:"seed" bson:"seed"`
	Team          string  `json:"team" bson:"team"`
	Eliminated    bool    `json:"eliminated" bson:"eliminated"`
	WinningRounds []Round `json:"winningRounds,omitempty" bson:"winningRounds,omitempty"`
}

func (c Choice) Validate() error {
	if !c.Region.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, c.Region)
	}
	if c.Seed < 1 || c.Seed > 16 {
		return fmt.Errorf("%w: %d", ErrInvalidSeed, c.Seed)
	}
	if c.Team == "" {
		return ErrTeamRequired
	}
	return nil
}

// WonRound reports whether the team is recorded as having won the given
// round, regardless of its overall eliminated flag.
func (c Choice) WonRound(r Round) bool {
	for _, won := range c.WinningRounds {
		if won == r {
			return true
		}
	}
	return false
}

// ChoiceList is the canonical list of tournament teams. It is a singleton
// per tournament and mutated only by the operator results feed.
type ChoiceList struct {
	Choices []Choice `json:"choices" bson:"choices"`
}

// ByTeam indexes the list by team name. Team names are unique within the
// catalog.
func (cl *ChoiceList) ByTeam() map[string]Choice {
	byTeam := make(map[string]Choice, len(cl.Choices))
	for _, c := range cl.Choices {
		byTeam[c.Team] = c
	}
	return byTeam
}

// Validate checks catalog shape: every choice valid, team names unique.
func (cl *ChoiceList) Validate() error {
	seen := make(map[string]struct{}, len(cl.Choices))
	for _, c := range cl.Choices {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := seen[c.Team]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTeam, c.Team)
		}
		seen[c.Team] = struct{}{}
	}
	return nil
}

// RoundChoices is the set of team picks a user commits for one round.
type RoundChoices struct {
	RoundOf Round    `json:"roundOf" bson:"roundOf"`
	Choices []Choice `json:"choices" bson:"choices"`
}

// Validate enforces the per-round submission schema: a known round, the
// exact pick count for that round, and no repeated region or team within
// the submission.
func (rc RoundChoices) Validate() error {
	if !rc.RoundOf.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRound, rc.RoundOf)
	}
	if want := rc.RoundOf.RequiredPicks(); len(rc.Choices) != want {
		return fmt.Errorf("%w: round of %d requires %d, got %d", ErrWrongPickCount, rc.RoundOf, want, len(rc.Choices))
	}
	regions := make(map[Region]struct{}, len(rc.Choices))
	teams := make(map[string]struct{}, len(rc.Choices))
	for _, c := range rc.Choices {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := regions[c.Region]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRegion, c.Region)
		}
		if _, ok := teams[c.Team]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTeam, c.Team)
		}
		regions[c.Region] = struct{}{}
		teams[c.Team] = struct{}{}
	}
	return nil
}

// PickEntry is one complete bracket submission belonging to a user. A user
// may own several entries. Choices are ordered by round index; derived
// fields are rewritten by the periodic update job.
type PickEntry struct {
	ID             string         `json:"id" bson:"_id"`
	UserID         string         `json:"userId" bson:"userId"`
	Choices        []RoundChoices `json:"choices" bson:"choices"`
	Eliminated     bool           `json:"eliminated" bson:"eliminated"`
	BestRound      Round          `json:"bestRound" bson:"bestRound"`
	TieBreaker     int            `json:"tieBreaker" bson:"tieBreaker"`
	AvailableTeams int            `json:"availableTeams" bson:"availableTeams"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
}

// PickedTeams collects every team the entry has committed to any round.
func (p *PickEntry) PickedTeams() map[string]struct{} {
	teams := make(map[string]struct{})
	for _, rc := range p.Choices {
		for _, c := range rc.Choices {
			teams[c.Team] = struct{}{}
		}
	}
	return teams
}

// RankedPicks is one pick entry joined to its owner, with unrevealed rounds
// already filtered out, as served on the public standings.
type RankedPicks struct {
	User           User           `json:"user"`
	Choices        []RoundChoices `json:"choices"`
	Eliminated     bool           `json:"eliminated"`
	BestRound      Round          `json:"bestRound"`
	TieBreaker     int            `json:"tieBreaker"`
	AvailableTeams int            `json:"availableTeams"`
}

// Results is the full leaderboard in display order.
type Results struct {
	Picks []RankedPicks `json:"picks"`
}
