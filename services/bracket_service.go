package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"survive-sports/models"
	"survive-sports/repositories"
)

// BracketService owns pick entry lifecycle, pick submission validation and
// the public standings. Derived fields on entries are maintained by the
// UpdateService; this service only reads them.
type BracketService struct {
	picksRepo      repositories.PicksRepository
	choiceListRepo repositories.ChoiceListRepository
	userRepo       repositories.UserRepository
	rounds         *RoundService
	logger         *slog.Logger
}

func NewBracketService(
	picksRepo repositories.PicksRepository,
	choiceListRepo repositories.ChoiceListRepository,
	userRepo repositories.UserRepository,
	rounds *RoundService,
	logger *slog.Logger,
) *BracketService {
	return &BracketService{
		picksRepo:      picksRepo,
		choiceListRepo: choiceListRepo,
		userRepo:       userRepo,
		rounds:         rounds,
		logger:         logger,
	}
}

// GetPicksForUser returns all of the user's pick entries, creating the
// first empty entry on demand so a first-time caller always gets one back.
func (s *BracketService) GetPicksForUser(ctx context.Context, user models.User) ([]*models.PickEntry, error) {
	entries, err := s.picksRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	entry := s.newEntry(user)
	if err := s.picksRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return []*models.PickEntry{entry}, nil
}

// CreatePickEntry adds another entry to the user's pool. Rejected once the
// tournament has started.
func (s *BracketService) CreatePickEntry(ctx context.Context, user models.User) ([]*models.PickEntry, error) {
	if s.rounds.HasGameStarted() {
		return nil, ErrGameAlreadyStarted
	}

	entries, err := s.GetPicksForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	entry := s.newEntry(user)
	if err := s.picksRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return append(entries, entry), nil
}

// DeletePickEntry removes the entry at the given index. Rejected once the
// tournament has started.
func (s *BracketService) DeletePickEntry(ctx context.Context, user models.User, entryIndex int) ([]*models.PickEntry, error) {
	if s.rounds.HasGameStarted() {
		return nil, ErrGameAlreadyStarted
	}

	entries, err := s.picksRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if entryIndex < 0 || entryIndex >= len(entries) {
		return nil, fmt.Errorf("%w: %d", ErrPickEntryNotFound, entryIndex)
	}

	if err := s.picksRepo.Delete(ctx, entries[entryIndex].ID); err != nil {
		return nil, err
	}
	return append(entries[:entryIndex], entries[entryIndex+1:]...), nil
}

// GetUserChoices returns the teams still draftable for the entry at the
// given index: catalog teams neither eliminated from the tournament nor
// already committed to any of the entry's rounds.
func (s *BracketService) GetUserChoices(ctx context.Context, user models.User, entryIndex int) (*models.ChoiceList, error) {
	list, err := s.choiceList(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.GetPicksForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if entryIndex < 0 || entryIndex >= len(entries) {
		return nil, fmt.Errorf("%w: %d", ErrPickEntryNotFound, entryIndex)
	}

	picked := entries[entryIndex].PickedTeams()
	remaining := make([]models.Choice, 0, len(list.Choices))
	for _, choice := range list.Choices {
		if choice.Eliminated {
			continue
		}
		if _, used := picked[choice.Team]; used {
			continue
		}
		remaining = append(remaining, choice)
	}
	return &models.ChoiceList{Choices: remaining}, nil
}

// SetPickForUser submits one round's choices into the entry at the given
// index. Validations run in order and fail fast; on success the updated
// entry is persisted and the user's full entry array is returned.
//
// A round may be written when its index is at most the entry's current
// round count, so the next round can be appended and a still-open round can
// be resubmitted. Earlier rounds are locked by the availability gate.
func (s *BracketService) SetPickForUser(ctx context.Context, user models.User, entryIndex int, choices models.RoundChoices) ([]*models.PickEntry, error) {
	entries, err := s.GetPicksForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if entryIndex < 0 || entryIndex >= len(entries) {
		return nil, fmt.Errorf("%w: %d", ErrPickEntryNotFound, entryIndex)
	}
	entry := entries[entryIndex]

	if !choices.RoundOf.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidRound, choices.RoundOf)
	}
	if !s.rounds.IsAvailableRound(choices.RoundOf) {
		return nil, fmt.Errorf("%w: round of %d", ErrRoundNotAvailable, choices.RoundOf)
	}
	if entry.Eliminated {
		return nil, fmt.Errorf("%w: %s", ErrUserEliminated, user.Name)
	}

	roundIndex := choices.RoundOf.Index()
	if roundIndex > len(entry.Choices) {
		return nil, fmt.Errorf("%w: round of %d", ErrRoundOutOfSequence, choices.RoundOf)
	}

	if err := choices.Validate(); err != nil {
		return nil, err
	}

	if roundIndex == len(entry.Choices) {
		entry.Choices = append(entry.Choices, choices)
	} else {
		entry.Choices[roundIndex] = choices
	}

	// A team picked to win one round must never appear in another round of
	// the same entry.
	seen := make(map[string]struct{})
	for _, rc := range entry.Choices {
		for _, c := range rc.Choices {
			if _, ok := seen[c.Team]; ok {
				return nil, fmt.Errorf("%w: %s", ErrTeamAlreadyPicked, c.Team)
			}
			seen[c.Team] = struct{}{}
		}
	}

	if err := s.picksRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetResults builds the public standings: every entry joined to its user,
// picks from unrevealed rounds withheld, ordered by the ranking rules.
func (s *BracketService) GetResults(ctx context.Context) (*models.Results, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = *u
	}

	entries, err := s.picksRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	picks := make([]models.RankedPicks, 0, len(entries))
	for _, entry := range entries {
		user, ok := usersByID[entry.UserID]
		if !ok {
			s.logger.Warn("pick entry without matching user", slog.String("userId", entry.UserID))
			continue
		}

		viewable := make([]models.RoundChoices, 0, len(entry.Choices))
		for _, rc := range entry.Choices {
			if s.rounds.IsViewableRound(rc.RoundOf) {
				viewable = append(viewable, rc)
			}
		}

		picks = append(picks, models.RankedPicks{
			User:           user,
			Choices:        viewable,
			Eliminated:     entry.Eliminated,
			BestRound:      entry.BestRound,
			TieBreaker:     entry.TieBreaker,
			AvailableTeams: entry.AvailableTeams,
		})
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return ranksBefore(picks[i], picks[j])
	})

	return &models.Results{Picks: picks}, nil
}

// ranksBefore is the standings total order: survivors first, then deeper
// best round, then higher tie breaker seed, then more remaining teams
// (entries with none left always sort after entries with some), then
// display name.
func ranksBefore(a, b models.RankedPicks) bool {
	if a.Eliminated != b.Eliminated {
		return !a.Eliminated
	}
	if a.BestRound != b.BestRound {
		return a.BestRound < b.BestRound
	}
	if a.TieBreaker != b.TieBreaker {
		return a.TieBreaker > b.TieBreaker
	}
	if (a.AvailableTeams == 0) != (b.AvailableTeams == 0) {
		return a.AvailableTeams != 0
	}
	if a.AvailableTeams != b.AvailableTeams {
		return a.AvailableTeams > b.AvailableTeams
	}
	return a.User.Name < b.User.Name
}

func (s *BracketService) newEntry(user models.User) *models.PickEntry {
	return &models.PickEntry{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Choices:    []models.RoundChoices{},
		Eliminated: false,
		BestRound:  models.RoundOf64,
		TieBreaker: 1,
		CreatedAt:  s.rounds.clock.Now().UTC(),
	}
}

func (s *BracketService) choiceList(ctx context.Context) (*models.ChoiceList, error) {
	list, err := s.choiceListRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrChoiceListNotFound) {
			return nil, ErrChoiceListNotFound
		}
		return nil, err
	}
	return list, nil
}
