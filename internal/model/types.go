package model

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Favorite records a user's interest in an event. (UserID, EventID) is unique.
type Favorite struct {
	UserID    int64     `json:"userId" db:"user_id"`
	EventID   string    `json:"eventId" db:"event_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Localized holds a Japanese/English text pair.
type Localized struct {
	Ja string `json:"ja" yaml:"ja"`
	En string `json:"en" yaml:"en"`
}

// Empty reports whether neither language is set.
func (l Localized) Empty() bool { return l.Ja == "" && l.En == "" }

// District is a geographic grouping used to filter events.
type District struct {
	Value        string    `json:"value"`
	Name         Localized `json:"name"`
	Area         string    `json:"area"`
	AreaName     Localized `json:"areaName"`
	DisplayOrder int       `json:"displayOrder"`
}

// Event is an externally sourced happening. Dates use YYYY-MM-DD.
type Event struct {
	ID          string    `json:"id"`
	Title       Localized `json:"title"`
	Description Localized `json:"description"`
	StartDate   string    `json:"startDate"`
	EndDate     *string   `json:"endDate,omitempty"`
	Location    string    `json:"location"`
	District    string    `json:"district"`
	ImageURL    string    `json:"imageUrl"`
}

// EventQuery filters an event search. District is optional.
type EventQuery struct {
	DateFrom string
	DateTo   string
	District *District
}
