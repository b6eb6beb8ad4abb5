package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func TestLogger_IncludesStackAndServiceOnError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "event-service", "debug")
	log.Error().Stack().Err(errors.New("boom")).Msg("something failed")

	line := lastNonEmptyLine(buf.String())
	require.NotEmpty(t, line)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload))
	require.Equal(t, "event-service", payload["service"])
	require.Equal(t, "error", payload["level"])
	require.Contains(t, payload, "stack")
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "event-service", "warn")
	log.Debug().Msg("hidden")
	log.Info().Msg("hidden too")
	require.Empty(t, buf.String())

	log.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "svc", "chatty")
	log.Debug().Msg("hidden")
	require.Empty(t, buf.String())
	log.Info().Msg("visible")
	require.Contains(t, buf.String(), "visible")
}
