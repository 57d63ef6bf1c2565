package services

import "errors"

// Business-rule errors shared across services and the HTTP error mapping.
var (
	// Hard dependency failures
	ErrChoiceListNotFound = errors.New("choice list not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPickEntryNotFound  = errors.New("pick entry at index does not exist")

	// Pick submission rules
	ErrRoundNotAvailable  = errors.New("round cannot be set")
	ErrUserEliminated     = errors.New("user already eliminated")
	ErrRoundOutOfSequence = errors.New("previous rounds are not set")
	ErrTeamAlreadyPicked  = errors.New("team selected more than once")

	// Entry lifecycle
	ErrGameAlreadyStarted = errors.New("game already started")
)
