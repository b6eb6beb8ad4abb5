// Package memory is a process-lifetime store.Store backed by maps. Nothing
// survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

type favKey struct {
	userID  int64
	eventID string
}

type memStore struct {
	mu sync.RWMutex

	nextUserID int64
	users      map[int64]*model.User
	byUsername map[string]int64

	favorites map[favKey]*model.Favorite

	districts map[string]*model.District

	now func() time.Time
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		nextUserID: 1,
		users:      make(map[int64]*model.User),
		byUsername: make(map[string]int64),
		favorites:  make(map[favKey]*model.Favorite),
		districts:  make(map[string]*model.District),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStore) Users() store.Users         { return (*users)(s) }
func (s *memStore) Favorites() store.Favorites { return (*favorites)(s) }
func (s *memStore) Districts() store.Districts { return (*districts)(s) }

// HealthPing implements health.HealthPinger; an in-process map is always reachable.
func (s *memStore) HealthPing(ctx context.Context) error { return ctx.Err() }

// --- Users ---
type users memStore

func (u *users) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, taken := u.byUsername[username]; taken {
		return nil, model.ErrConflict
	}
	rec := &model.User{
		ID:           u.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    u.now(),
	}
	u.nextUserID++
	u.users[rec.ID] = rec
	u.byUsername[username] = rec.ID
	out := *rec
	return &out, nil
}

func (u *users) Get(ctx context.Context, id int64) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	rec, ok := u.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	id, ok := u.byUsername[username]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *u.users[id]
	return &out, nil
}

// --- Favorites ---
type favorites memStore

func (f *favorites) List(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*model.Favorite
	for k, v := range f.favorites {
		if k.userID == userID {
			c := *v
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].EventID < out[j].EventID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *favorites) Get(ctx context.Context, userID int64, eventID string) (*model.Favorite, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.favorites[favKey{userID, eventID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (f *favorites) Add(ctx context.Context, userID int64, eventID string) (*model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := favKey{userID, eventID}
	if _, exists := f.favorites[k]; exists {
		return nil, model.ErrConflict
	}
	rec := &model.Favorite{UserID: userID, EventID: eventID, CreatedAt: f.now()}
	f.favorites[k] = rec
	out := *rec
	return &out, nil
}

func (f *favorites) Remove(ctx context.Context, userID int64, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.favorites, favKey{userID, eventID})
	return nil
}

// --- Districts ---
type districts memStore

func (d *districts) List(ctx context.Context) ([]*model.District, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*model.District, 0, len(d.districts))
	for _, v := range d.districts {
		c := *v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder == out[j].DisplayOrder {
			return out[i].Value < out[j].Value
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

func (d *districts) GetByValue(ctx context.Context, value string) (*model.District, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.districts[value]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (d *districts) Seed(ctx context.Context, list []model.District) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.districts) > 0 {
		return false, nil
	}
	for i := range list {
		c := list[i]
		d.districts[c.Value] = &c
	}
	return true, nil
}
