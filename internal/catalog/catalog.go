// Package catalog holds the static district table and seeds it into a store.
package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

//go:embed districts.yaml
var defaultTable []byte

type table struct {
	Areas []struct {
		Value     string          `yaml:"value"`
		Name      model.Localized `yaml:"name"`
		Districts []struct {
			Value string          `yaml:"value"`
			Name  model.Localized `yaml:"name"`
		} `yaml:"districts"`
	} `yaml:"areas"`
}

// Parse decodes a district table. Display order is assigned from position,
// starting at 1 and continuing across areas.
func Parse(data []byte) ([]model.District, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse district table: %w", err)
	}

	var out []model.District
	seen := make(map[string]bool)
	order := 0
	for _, a := range t.Areas {
		if a.Value == "" {
			return nil, fmt.Errorf("%w: area without value", model.ErrValidation)
		}
		for _, d := range a.Districts {
			if d.Value == "" || d.Name.Empty() {
				return nil, fmt.Errorf("%w: district in %s missing value or name", model.ErrValidation, a.Value)
			}
			if seen[d.Value] {
				return nil, fmt.Errorf("%w: duplicate district %q", model.ErrValidation, d.Value)
			}
			seen[d.Value] = true
			order++
			out = append(out, model.District{
				Value:        d.Value,
				Name:         d.Name,
				Area:         a.Value,
				AreaName:     a.Name,
				DisplayOrder: order,
			})
		}
	}
	return out, nil
}

// Default returns the built-in Tokyo district table.
func Default() []model.District {
	list, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return list
}

// Seed loads the built-in table into st unless the catalog already has rows.
func Seed(ctx context.Context, st store.Store, log zerolog.Logger) error {
	list := Default()
	seeded, err := st.Districts().Seed(ctx, list)
	if err != nil {
		return fmt.Errorf("seed districts: %w", err)
	}
	if seeded {
		log.Info().Int("count", len(list)).Msg("district catalog seeded")
	} else {
		log.Debug().Msg("district catalog already present")
	}
	return nil
}
