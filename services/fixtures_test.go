package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"survive-sports/models"
	"survive-sports/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func choice(region models.Region, seed int, team string) models.Choice {
	return models.Choice{Region: region, Seed: seed, Team: team}
}

// testChoiceList is a 16-team catalog, four seeds per region, enough to
// fill a full entry without reuse.
func testChoiceList() *models.ChoiceList {
	return &models.ChoiceList{Choices: []models.Choice{
		choice(models.RegionEast, 1, "Duke"),
		choice(models.RegionEast, 2, "Michigan State"),
		choice(models.RegionEast, 3, "LSU"),
		choice(models.RegionEast, 4, "Virginia Tech"),
		choice(models.RegionWest, 1, "Gonzaga"),
		choice(models.RegionWest, 2, "Michigan"),
		choice(models.RegionWest, 3, "Texas Tech"),
		choice(models.RegionWest, 4, "Florida State"),
		choice(models.RegionSouth, 1, "Virginia"),
		choice(models.RegionSouth, 2, "Tennessee"),
		choice(models.RegionSouth, 3, "Purdue"),
		choice(models.RegionSouth, 4, "Kansas State"),
		choice(models.RegionMidwest, 1, "North Carolina"),
		choice(models.RegionMidwest, 2, "Kentucky"),
		choice(models.RegionMidwest, 3, "Houston"),
		choice(models.RegionMidwest, 4, "Kansas"),
	}}
}

// fullEntryRounds is a complete, valid six-round submission drawn from
// testChoiceList with no team reused.
func fullEntryRounds() []models.RoundChoices {
	return []models.RoundChoices{
		{RoundOf: models.RoundOf64, Choices: []models.Choice{
			choice(models.RegionEast, 1, "Duke"),
			choice(models.RegionWest, 1, "Gonzaga"),
			choice(models.RegionSouth, 1, "Virginia"),
			choice(models.RegionMidwest, 1, "North Carolina"),
		}},
		{RoundOf: models.RoundOf32, Choices: []models.Choice{
			choice(models.RegionEast, 2, "Michigan State"),
			choice(models.RegionWest, 2, "Michigan"),
		}},
		{RoundOf: models.RoundOf16, Choices: []models.Choice{
			choice(models.RegionSouth, 2, "Tennessee"),
		}},
		{RoundOf: models.RoundOf8, Choices: []models.Choice{
			choice(models.RegionMidwest, 2, "Kentucky"),
		}},
		{RoundOf: models.RoundOf4, Choices: []models.Choice{
			choice(models.RegionEast, 3, "LSU"),
		}},
		{RoundOf: models.RoundOf2, Choices: []models.Choice{
			choice(models.RegionWest, 3, "Texas Tech"),
		}},
	}
}

type fixture struct {
	clock      *clockwork.FakeClock
	rounds     *RoundService
	picksRepo  *repositories.InMemoryPicksRepository
	choiceRepo *repositories.InMemoryChoiceListRepository
	userRepo   *repositories.InMemoryUserRepository
	bracket    *BracketService
	update     *UpdateService
}

func newFixture(t *testing.T, at time.Time) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(at)
	rounds := NewRoundService(testSchedule(), clock)
	picksRepo := repositories.NewInMemoryPicksRepository()
	choiceRepo := repositories.NewInMemoryChoiceListRepository()
	userRepo := repositories.NewInMemoryUserRepository()

	require.NoError(t, choiceRepo.Replace(context.Background(), testChoiceList()))

	logger := testLogger()
	return &fixture{
		clock:      clock,
		rounds:     rounds,
		picksRepo:  picksRepo,
		choiceRepo: choiceRepo,
		userRepo:   userRepo,
		bracket:    NewBracketService(picksRepo, choiceRepo, userRepo, rounds, logger),
		update:     NewUpdateService(picksRepo, choiceRepo, rounds, 30*time.Second, clock, logger),
	}
}

func (f *fixture) addUser(id, name string) models.User {
	user := models.User{ID: id, Name: name}
	f.userRepo.Add(user)
	return user
}

// submitRounds pushes the given rounds into the user's entry in order,
// expecting every submission to succeed.
func (f *fixture) submitRounds(t *testing.T, user models.User, entryIndex int, rounds []models.RoundChoices) {
	t.Helper()
	for _, rc := range rounds {
		_, err := f.bracket.SetPickForUser(context.Background(), user, entryIndex, rc)
		require.NoError(t, err, "round of %d", rc.RoundOf)
	}
}
