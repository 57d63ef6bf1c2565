package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survive-sports/models"
	"survive-sports/repositories"
)

// markEliminated flags teams in the stored choice list, optionally
// crediting rounds they still won.
func (f *fixture) markEliminated(t *testing.T, team string, winningRounds ...models.Round) {
	t.Helper()
	list, err := f.choiceRepo.Get(context.Background())
	require.NoError(t, err)
	for i := range list.Choices {
		if list.Choices[i].Team == team {
			list.Choices[i].Eliminated = true
			list.Choices[i].WinningRounds = winningRounds
		}
	}
	require.NoError(t, f.choiceRepo.Replace(context.Background(), list))
}

func (f *fixture) entryFor(t *testing.T, userID string) *models.PickEntry {
	t.Helper()
	entries, err := f.picksRepo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[0]
}

func seedFullEntry(t *testing.T, f *fixture, user models.User) {
	t.Helper()
	entry := &models.PickEntry{
		ID:         user.ID + "-entry",
		UserID:     user.ID,
		Choices:    fullEntryRounds(),
		BestRound:  models.RoundOf64,
		TieBreaker: 1,
		CreatedAt:  f.clock.Now(),
	}
	require.NoError(t, f.picksRepo.Create(context.Background(), entry))
}

func TestRecomputeEliminationPropagates(t *testing.T) {
	// Round of 64 results are viewable.
	f := newFixture(t, testBase.Add(time.Hour))
	user := f.addUser("u1", "Alice")
	seedFullEntry(t, f, user)

	f.markEliminated(t, "Duke")
	require.NoError(t, f.update.RunOnce(context.Background()))

	entry := f.entryFor(t, "u1")
	assert.True(t, entry.Eliminated)
}

func TestRecomputeWinningRoundOverride(t *testing.T) {
	f := newFixture(t, testBase.Add(time.Hour))
	user := f.addUser("u1", "Alice")
	seedFullEntry(t, f, user)

	// Duke lost later, but won the round of 64 the entry picked it for.
	f.markEliminated(t, "Duke", models.RoundOf64)
	require.NoError(t, f.update.RunOnce(context.Background()))

	entry := f.entryFor(t, "u1")
	assert.False(t, entry.Eliminated)
	assert.Equal(t, models.RoundOf64, entry.BestRound)
}

func TestRecomputeNonViewableRoundDoesNotEliminate(t *testing.T) {
	// Tournament has not started: nothing viewable, nothing eliminates.
	f := newFixture(t, testBase.Add(-time.Hour))
	user := f.addUser("u1", "Alice")
	seedFullEntry(t, f, user)

	f.markEliminated(t, "Duke")
	require.NoError(t, f.update.RunOnce(context.Background()))

	entry := f.entryFor(t, "u1")
	assert.False(t, entry.Eliminated)
	assert.Equal(t, models.RoundOf64, entry.BestRound)
}

func TestRecomputeDerivedFields(t *testing.T) {
	// Rounds of 64 and 32 are viewable.
	f := newFixture(t, testBase.Add(49*time.Hour))
	user := f.addUser("u1", "Alice")
	seedFullEntry(t, f, user)

	// Kansas is out but the entry never picked it.
	f.markEliminated(t, "Kansas")
	require.NoError(t, f.update.RunOnce(context.Background()))

	entry := f.entryFor(t, "u1")
	assert.False(t, entry.Eliminated)
	// Survived through the viewable round of 32.
	assert.Equal(t, models.RoundOf32, entry.BestRound)
	// Highest seed among surviving viewable picks (the two 2-seeds).
	assert.Equal(t, 2, entry.TieBreaker)
	// 16 teams, minus eliminated Kansas, minus the 6 locked into the two
	// viewable rounds.
	assert.Equal(t, 9, entry.AvailableTeams)
}

func TestRecomputeEliminationFreezesBestRound(t *testing.T) {
	// All rounds viewable.
	f := newFixture(t, testBase.Add(20*24*time.Hour))
	user := f.addUser("u1", "Alice")
	seedFullEntry(t, f, user)

	// Michigan fell in the round of 32 that the entry picked it for.
	f.markEliminated(t, "Michigan")
	require.NoError(t, f.update.RunOnce(context.Background()))

	entry := f.entryFor(t, "u1")
	assert.True(t, entry.Eliminated)
	// Only the round of 64 was survived before the elimination round.
	assert.Equal(t, models.RoundOf64, entry.BestRound)
	assert.Equal(t, 1, entry.TieBreaker)
}

func TestRecomputeIdempotent(t *testing.T) {
	f := newFixture(t, testBase.Add(49*time.Hour))
	alice := f.addUser("u1", "Alice")
	bob := f.addUser("u2", "Bob")
	seedFullEntry(t, f, alice)

	bobEntry := &models.PickEntry{
		ID:         "u2-entry",
		UserID:     bob.ID,
		Choices:    fullEntryRounds()[:1],
		BestRound:  models.RoundOf64,
		TieBreaker: 1,
		CreatedAt:  f.clock.Now(),
	}
	require.NoError(t, f.picksRepo.Create(context.Background(), bobEntry))

	f.markEliminated(t, "Tennessee")
	require.NoError(t, f.update.RunOnce(context.Background()))
	first, err := f.picksRepo.ListAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.update.RunOnce(context.Background()))
	second, err := f.picksRepo.ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecomputeMissingChoiceListFails(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testBase)
	rounds := NewRoundService(testSchedule(), clock)
	picksRepo := repositories.NewInMemoryPicksRepository()
	choiceRepo := repositories.NewInMemoryChoiceListRepository()
	update := NewUpdateService(picksRepo, choiceRepo, rounds, 30*time.Second, clock, testLogger())

	err := update.RunOnce(context.Background())
	assert.ErrorIs(t, err, repositories.ErrChoiceListNotFound)
}
