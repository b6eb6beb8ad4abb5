package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/machi-events/eventfinder/internal/events"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// lookupConcurrency bounds parallel source lookups when listing favorites.
const lookupConcurrency = 4

// FavoriteService manages a user's favorites.
type FavoriteService struct {
	favorites store.Favorites
	events    *EventService
	pub       events.Publisher
	log       zerolog.Logger
}

func NewFavoriteService(favorites store.Favorites, eventSvc *EventService, pub events.Publisher, log zerolog.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, events: eventSvc, pub: pub, log: log}
}

// List returns the events a user has favorited, newest favorite first.
// Events missing from the cache are looked up once; events the source cannot
// resolve are skipped.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]model.Event, error) {
	favs, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := make([]*model.Event, len(favs))
	var g errgroup.Group
	g.SetLimit(lookupConcurrency)
	for i, f := range favs {
		i, f := i, f
		if ev, ok := s.events.Cached(f.EventID); ok {
			resolved[i] = &ev
			continue
		}
		g.Go(func() error {
			ev, err := s.events.Get(ctx, f.EventID)
			if err != nil {
				s.log.Warn().Err(err).Int64("user_id", userID).Str("event_id", f.EventID).Msg("skipping unresolved favorite")
				return nil
			}
			resolved[i] = ev
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.Event, 0, len(resolved))
	for _, ev := range resolved {
		if ev != nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

// Add favorites eventID for userID. A second add of the same pair, including
// one racing this call, returns ErrAlreadyFavorited.
func (s *FavoriteService) Add(ctx context.Context, userID int64, eventID string) (*model.Favorite, error) {
	if _, err := s.favorites.Get(ctx, userID, eventID); err == nil {
		return nil, ErrAlreadyFavorited
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	f, err := s.favorites.Add(ctx, userID, eventID)
	if errors.Is(err, model.ErrConflict) {
		return nil, ErrAlreadyFavorited
	}
	if err != nil {
		return nil, err
	}
	s.publish(events.KindFavoriteAdded, userID, eventID)
	return f, nil
}

// Remove unfavorites eventID. Removing a missing favorite succeeds.
func (s *FavoriteService) Remove(ctx context.Context, userID int64, eventID string) error {
	_, err := s.favorites.Get(ctx, userID, eventID)
	existed := err == nil
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if err := s.favorites.Remove(ctx, userID, eventID); err != nil {
		return err
	}
	if existed {
		s.publish(events.KindFavoriteRemoved, userID, eventID)
	}
	return nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID int64, eventID string) (bool, error) {
	_, err := s.favorites.Get(ctx, userID, eventID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FavoriteService) publish(kind events.Kind, userID int64, eventID string) {
	if !s.pub.Publish(events.Activity{Kind: kind, UserID: userID, EventID: eventID}) {
		s.log.Warn().Str("kind", string(kind)).Int64("user_id", userID).Msg("activity bus full; dropping")
	}
}
