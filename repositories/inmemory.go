package repositories

import (
	"context"
	"sort"
	"sync"

	"survive-sports/models"
)

// In-memory repository implementations backing tests and local development
// without a running Mongo instance. Mutexed maps, deep copies on the way
// in and out so callers never share state with the store.

type InMemoryChoiceListRepository struct {
	mu   sync.Mutex
	list *models.ChoiceList
}

func NewInMemoryChoiceListRepository() *InMemoryChoiceListRepository {
	return &InMemoryChoiceListRepository{}
}

func (r *InMemoryChoiceListRepository) Get(_ context.Context) (*models.ChoiceList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.list == nil {
		return nil, ErrChoiceListNotFound
	}
	return copyChoiceList(r.list), nil
}

func (r *InMemoryChoiceListRepository) Replace(_ context.Context, list *models.ChoiceList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = copyChoiceList(list)
	return nil
}

type InMemoryPicksRepository struct {
	mu      sync.Mutex
	entries map[string]*models.PickEntry
}

func NewInMemoryPicksRepository() *InMemoryPicksRepository {
	return &InMemoryPicksRepository{entries: make(map[string]*models.PickEntry)}
}

func (r *InMemoryPicksRepository) ListAll(_ context.Context) ([]*models.PickEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*models.PickEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, copyPickEntry(entry))
	}
	sortEntries(entries)
	return entries, nil
}

func (r *InMemoryPicksRepository) ListByUser(_ context.Context, userID string) ([]*models.PickEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*models.PickEntry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			entries = append(entries, copyPickEntry(entry))
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (r *InMemoryPicksRepository) Create(_ context.Context, entry *models.PickEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = copyPickEntry(entry)
	return nil
}

func (r *InMemoryPicksRepository) Update(_ context.Context, entry *models.PickEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return ErrPickEntryNotFound
	}
	r.entries[entry.ID] = copyPickEntry(entry)
	return nil
}

func (r *InMemoryPicksRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrPickEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewInMemoryUserRepository(users ...models.User) *InMemoryUserRepository {
	r := &InMemoryUserRepository{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *InMemoryUserRepository) Add(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *InMemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		user := u
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func sortEntries(entries []*models.PickEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func copyChoiceList(list *models.ChoiceList) *models.ChoiceList {
	out := &models.ChoiceList{Choices: make([]models.Choice, len(list.Choices))}
	copy(out.Choices, list.Choices)
	for i, c := range out.Choices {
		if c.WinningRounds != nil {
			rounds := make([]models.Round, len(c.WinningRounds))
			copy(rounds, c.WinningRounds)
			out.Choices[i].WinningRounds = rounds
		}
	}
	return out
}

func copyPickEntry(entry *models.PickEntry) *models.PickEntry {
	out := *entry
	out.Choices = make([]models.RoundChoices, len(entry.Choices))
	for i, rc := range entry.Choices {
		copied := rc
		copied.Choices = make([]models.Choice, len(rc.Choices))
		copy(copied.Choices, rc.Choices)
		out.Choices[i] = copied
	}
	return &out
}
