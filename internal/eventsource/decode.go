package eventsource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/machi-events/eventfinder/internal/model"
)

var dateRx = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type searchPayload struct {
	Events *[]model.Event `json:"events"`
}

type lookupPayload struct {
	Event json.RawMessage `json:"event"`
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown
// fields and trailing data.
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", ErrInvalidResponse)
	}
	return nil
}

func decodeSearch(content string) ([]model.Event, error) {
	var p searchPayload
	if err := decodeStrict([]byte(content), &p); err != nil {
		return nil, err
	}
	if p.Events == nil {
		return nil, fmt.Errorf("%w: missing events", ErrInvalidResponse)
	}
	seen := make(map[string]bool, len(*p.Events))
	for i, ev := range *p.Events {
		if err := validateEvent(ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if seen[ev.ID] {
			return nil, fmt.Errorf("%w: duplicate event id %q", ErrInvalidResponse, ev.ID)
		}
		seen[ev.ID] = true
	}
	return *p.Events, nil
}

func decodeLookup(content, id string) (*model.Event, error) {
	var p lookupPayload
	if err := decodeStrict([]byte(content), &p); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(p.Event)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing event", ErrInvalidResponse)
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, model.ErrNotFound
	}
	var ev model.Event
	if err := decodeStrict(raw, &ev); err != nil {
		return nil, err
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	if ev.ID != id {
		return nil, fmt.Errorf("%w: asked for %q, got %q", ErrInvalidResponse, id, ev.ID)
	}
	return &ev, nil
}

func validateEvent(ev model.Event) error {
	if err := model.CheckEventID(ev.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if ev.Title.Empty() {
		return fmt.Errorf("%w: event %q has no title", ErrInvalidResponse, ev.ID)
	}
	if err := checkDate(ev.StartDate); err != nil {
		return fmt.Errorf("%w: event %q startDate: %v", ErrInvalidResponse, ev.ID, err)
	}
	if ev.EndDate != nil {
		if err := checkDate(*ev.EndDate); err != nil {
			return fmt.Errorf("%w: event %q endDate: %v", ErrInvalidResponse, ev.ID, err)
		}
		if *ev.EndDate < ev.StartDate {
			return fmt.Errorf("%w: event %q ends before it starts", ErrInvalidResponse, ev.ID)
		}
	}
	return nil
}

func checkDate(s string) error {
	if !dateRx.MatchString(s) {
		return fmt.Errorf("%q is not YYYY-MM-DD", s)
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%q is not a calendar date", s)
	}
	return nil
}
