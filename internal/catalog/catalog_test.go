package catalog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store/memory"
)

func TestDefault_TokyoTable(t *testing.T) {
	list := Default()
	require.Len(t, list, 23+26)

	wards := 0
	for i, d := range list {
		require.Equal(t, i+1, d.DisplayOrder)
		require.NotEmpty(t, d.Name.Ja)
		require.NotEmpty(t, d.Name.En)
		if d.Area == "special-wards" {
			wards++
		} else {
			require.Equal(t, "tama", d.Area)
		}
	}
	require.Equal(t, 23, wards)
	require.Equal(t, "chiyoda", list[0].Value)
	require.Equal(t, "東京23区", list[0].AreaName.Ja)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"duplicate", `
areas:
  - value: a
    districts:
      - { value: x, name: { en: X } }
      - { value: x, name: { en: X2 } }`},
		{"missing name", `
areas:
  - value: a
    districts:
      - { value: x }`},
		{"area without value", `
areas:
  - districts:
      - { value: x, name: { en: X } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}

	_, err := Parse([]byte("areas: ["))
	require.Error(t, err)
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	require.NoError(t, Seed(ctx, st, zerolog.Nop()))
	require.NoError(t, Seed(ctx, st, zerolog.Nop()))

	list, err := st.Districts().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(Default()))

	d, err := st.Districts().GetByValue(ctx, "hachioji")
	require.NoError(t, err)
	require.Equal(t, "tama", d.Area)
}
