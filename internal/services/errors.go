package services

import (
	"errors"
	"fmt"

	"github.com/machi-events/eventfinder/internal/model"
)

var (
	// ErrNotRegistered is returned by Login for an unknown username.
	ErrNotRegistered = errors.New("not registered")
	// ErrIncorrectPassword is returned by Login for a known username with the wrong password.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrUsernameTaken is returned by Register when the username exists.
	ErrUsernameTaken = fmt.Errorf("%w: username already exists", model.ErrValidation)
	// ErrAlreadyFavorited is returned by FavoriteService.Add for an existing pair.
	ErrAlreadyFavorited = fmt.Errorf("%w: already in favorites", model.ErrValidation)
	// ErrUnknownDistrict is returned by EventService.Search for a district not in the catalog.
	ErrUnknownDistrict = fmt.Errorf("%w: unknown district", model.ErrValidation)
	// ErrSourceFailure wraps any failure of the external event source.
	ErrSourceFailure = errors.New("failed to fetch events")
)
