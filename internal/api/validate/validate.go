package validate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/machi-events/eventfinder/internal/model"
)

var (
	usernameRx = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,32}$`)
	dateRx     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const (
	minPasswordLen = 6
	// bcrypt ignores input past 72 bytes
	maxPasswordLen = 72
)

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func Username(v string) error {
	if err := NonEmpty("username", v); err != nil {
		return err
	}
	if !usernameRx.MatchString(v) {
		return fmt.Errorf("username must be 3-32 characters of letters, digits, '.', '_' or '-'")
	}
	return nil
}

func Password(v string) error {
	if err := NonEmpty("password", v); err != nil {
		return err
	}
	if len(v) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(v) > maxPasswordLen {
		return fmt.Errorf("password exceeds %d bytes", maxPasswordLen)
	}
	return nil
}

// Date checks the strict YYYY-MM-DD shape and that the day exists.
func Date(field, v string) error {
	if err := NonEmpty(field, v); err != nil {
		return err
	}
	if !dateRx.MatchString(v) {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", field)
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return fmt.Errorf("%s is not a valid date", field)
	}
	return nil
}

// DateRange validates both bounds and that from is not after to.
func DateRange(from, to string) error {
	if err := Date("dateFrom", from); err != nil {
		return err
	}
	if err := Date("dateTo", to); err != nil {
		return err
	}
	// lexical order equals chronological order for YYYY-MM-DD
	if from > to {
		return fmt.Errorf("dateFrom must not be after dateTo")
	}
	return nil
}

// EventID applies the same rule the event source decoder enforces, so any
// id a search returns can be fetched and favorited.
func EventID(v string) error {
	return model.CheckEventID(v)
}

// -------- Request specific helpers ----------

// Credentials validates a register or login body.
func Credentials(username, password string) error {
	if err := Username(username); err != nil {
		return err
	}
	return Password(password)
}
