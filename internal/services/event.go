package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/machi-events/eventfinder/internal/eventcache"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// EventSource supplies events. *eventsource.Client implements it.
type EventSource interface {
	Search(ctx context.Context, q model.EventQuery) ([]model.Event, error)
	Lookup(ctx context.Context, id string) (*model.Event, error)
}

// EventService searches the source and keeps what it returns in the cache.
type EventService struct {
	src       EventSource
	cache     *eventcache.Cache
	districts store.Districts
	lookups   singleflight.Group
	log       zerolog.Logger
}

func NewEventService(src EventSource, cache *eventcache.Cache, districts store.Districts, log zerolog.Logger) *EventService {
	return &EventService{src: src, cache: cache, districts: districts, log: log}
}

// Search queries the source for [from, to] and an optional district value.
// Dates must already be validated.
func (s *EventService) Search(ctx context.Context, from, to, district string) ([]model.Event, error) {
	q := model.EventQuery{DateFrom: from, DateTo: to}
	if district != "" {
		d, err := s.districts.GetByValue(ctx, district)
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrUnknownDistrict
		}
		if err != nil {
			return nil, err
		}
		q.District = d
	}

	events, err := s.src.Search(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("from", from).Str("to", to).Str("district", district).Msg("event search failed")
		return nil, fmt.Errorf("%w: %v", ErrSourceFailure, err)
	}
	s.cache.PutAll(events)
	return events, nil
}

// Cached returns the event from the cache only.
func (s *EventService) Cached(id string) (model.Event, bool) {
	return s.cache.Get(id)
}

// Get returns the event by ID from the cache, falling back to one source
// lookup. Concurrent misses for the same ID share that lookup.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if ev, ok := s.cache.Get(id); ok {
		return &ev, nil
	}

	// the lookup is shared, so one caller going away must not fail the rest;
	// the source's own timeout still bounds it
	v, err, shared := s.lookups.Do(id, func() (interface{}, error) {
		ev, err := s.src.Lookup(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		s.cache.Put(*ev)
		return *ev, nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		s.log.Error().Err(err).Str("event_id", id).Bool("shared", shared).Msg("event lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrSourceFailure, err)
	}
	ev := v.(model.Event)
	return &ev, nil
}
