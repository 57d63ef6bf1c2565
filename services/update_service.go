package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"survive-sports/models"
	"survive-sports/repositories"
)

// UpdateService is the periodic reconciliation job. Each cycle re-derives
// every pick entry's eliminated flag, best round, tie breaker and remaining
// team count from the current choice list. Best effort: a failed cycle is
// logged and the next tick runs regardless.
type UpdateService struct {
	picksRepo      repositories.PicksRepository
	choiceListRepo repositories.ChoiceListRepository
	rounds         *RoundService
	interval       time.Duration
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewUpdateService(
	picksRepo repositories.PicksRepository,
	choiceListRepo repositories.ChoiceListRepository,
	rounds *RoundService,
	interval time.Duration,
	clock clockwork.Clock,
	logger *slog.Logger,
) *UpdateService {
	return &UpdateService{
		picksRepo:      picksRepo,
		choiceListRepo: choiceListRepo,
		rounds:         rounds,
		interval:       interval,
		clock:          clock,
		logger:         logger,
	}
}

// Run executes one cycle immediately, then one per interval until the
// context is cancelled.
func (s *UpdateService) Run(ctx context.Context) {
	s.logger.Info("pick update job started", slog.Duration("interval", s.interval))

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("pick update cycle failed", slog.Any("error", err))
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pick update job stopped")
			return
		case <-ticker.Chan():
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("pick update cycle failed", slog.Any("error", err))
			}
		}
	}
}

// RunOnce performs a single reconciliation cycle: load the choice list,
// recompute every entry's derived fields against it, and persist all
// updated entries concurrently. Idempotent for an unchanged choice list.
func (s *UpdateService) RunOnce(ctx context.Context) error {
	list, err := s.choiceListRepo.Get(ctx)
	if err != nil {
		return err
	}
	byTeam := list.ByTeam()

	entries, err := s.picksRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		s.recompute(entry, byTeam)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			return s.picksRepo.Update(gCtx, entry)
		})
	}
	return g.Wait()
}

// recompute rewrites one entry's derived fields from the catalog truth.
//
// Walking the entry's rounds in play order: a choice counts as eliminated
// when the catalog marks its team out of the tournament and the team is not
// credited with winning that specific round. Any eliminated choice in a
// viewable round eliminates the whole entry at that round. Rounds survived
// advance the best round, raise the tie breaker to the round's highest
// seed, and consume the round's teams from the entry's remaining pool.
func (s *UpdateService) recompute(entry *models.PickEntry, byTeam map[string]models.Choice) {
	entry.Eliminated = false
	entry.BestRound = models.RoundOf64
	entry.TieBreaker = 1

	used := make(map[string]struct{})

	for _, rc := range entry.Choices {
		viewable := s.rounds.IsViewableRound(rc.RoundOf)

		roundEliminated := false
		maxSeed := 0
		for _, choice := range rc.Choices {
			truth, ok := byTeam[choice.Team]
			if !ok {
				// Team dropped from the catalog; fall back to the stored
				// snapshot.
				truth = choice
			}
			if viewable && truth.Eliminated && !truth.WonRound(rc.RoundOf) {
				roundEliminated = true
			}
			if choice.Seed > maxSeed {
				maxSeed = choice.Seed
			}
		}

		if roundEliminated {
			entry.Eliminated = true
			break
		}

		if viewable {
			if rc.RoundOf < entry.BestRound {
				entry.BestRound = rc.RoundOf
			}
			if maxSeed > entry.TieBreaker {
				entry.TieBreaker = maxSeed
			}
			for _, choice := range rc.Choices {
				used[choice.Team] = struct{}{}
			}
		}
	}

	available := 0
	for team, choice := range byTeam {
		if choice.Eliminated {
			continue
		}
		if _, taken := used[team]; taken {
			continue
		}
		available++
	}
	entry.AvailableTeams = available
}
