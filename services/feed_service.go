package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"survive-sports/models"
	"survive-sports/repositories"
	"survive-sports/storage"
)

// ErrFeedNotConfigured is returned when a feed refresh is requested but no
// object-storage feed was configured at startup.
var ErrFeedNotConfigured = errors.New("results feed is not configured")

// FeedService ingests the operator's results feed into the choice list.
// The list is the single source of truth for team eliminations and
// winning-round credits consumed by the update job.
type FeedService struct {
	choiceListRepo repositories.ChoiceListRepository
	fetcher        storage.FeedFetcher
	feedKey        string
	logger         *slog.Logger
}

// NewFeedService builds the ingestion service. fetcher may be nil when no
// feed bucket is configured; RefreshFromFeed then fails and only inline
// replacement is possible.
func NewFeedService(
	choiceListRepo repositories.ChoiceListRepository,
	fetcher storage.FeedFetcher,
	feedKey string,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		choiceListRepo: choiceListRepo,
		fetcher:        fetcher,
		feedKey:        feedKey,
		logger:         logger,
	}
}

// RefreshFromFeed pulls the feed object, decodes it as a choice list and
// replaces the catalog with it.
func (s *FeedService) RefreshFromFeed(ctx context.Context) (*models.ChoiceList, error) {
	if s.fetcher == nil || s.feedKey == "" {
		return nil, ErrFeedNotConfigured
	}

	body, err := s.fetcher.Fetch(ctx, s.feedKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var list models.ChoiceList
	if err := json.NewDecoder(body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode choice list feed: %w", err)
	}

	if err := s.ReplaceChoiceList(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ReplaceChoiceList validates and stores a full choice list.
func (s *FeedService) ReplaceChoiceList(ctx context.Context, list *models.ChoiceList) error {
	if len(list.Choices) == 0 {
		return fmt.Errorf("%w: empty choice list", models.ErrTeamRequired)
	}
	if err := list.Validate(); err != nil {
		return err
	}

	if err := s.choiceListRepo.Replace(ctx, list); err != nil {
		return err
	}
	s.logger.Info("choice list replaced", slog.Int("teams", len(list.Choices)))
	return nil
}
