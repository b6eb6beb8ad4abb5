package store

import (
	"context"

	"github.com/machi-events/eventfinder/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (memory, sqlite, postgres).
type Store interface {
	Users() Users
	Favorites() Favorites
	Districts() Districts
}

// Users holds accounts. Get and GetByUsername return model.ErrNotFound when absent.
// Create assigns the next ID and returns model.ErrConflict if the username is taken.
type Users interface {
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Favorites holds (user, event) membership. Add is insert-if-absent and returns
// model.ErrConflict for an existing pair; Remove of a missing pair is a no-op.
// List returns newest first.
type Favorites interface {
	List(ctx context.Context, userID int64) ([]*model.Favorite, error)
	Get(ctx context.Context, userID int64, eventID string) (*model.Favorite, error)
	Add(ctx context.Context, userID int64, eventID string) (*model.Favorite, error)
	Remove(ctx context.Context, userID int64, eventID string) error
}

// Districts is the read-mostly district catalog. List is ordered by DisplayOrder
// then Value. Seed inserts only when the catalog is empty and reports whether it did.
type Districts interface {
	List(ctx context.Context) ([]*model.District, error)
	GetByValue(ctx context.Context, value string) (*model.District, error)
	Seed(ctx context.Context, districts []model.District) (bool, error)
}
