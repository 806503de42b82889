// Package level holds the ordered level catalog and the obstacle sequence
// generator.
package level

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Obstacle types used by the default catalog.
const (
	Laser    = "laser"
	Camera   = "camera"
	Guard    = "guard"
	Trapdoor = "trapdoor"
)

// Level is an immutable level definition. Identity is its position in the
// catalog.
type Level struct {
	Name             string             `json:"name" koanf:"name" validate:"required,max=64"`
	ObstacleTypes    []string           `json:"obstacles" koanf:"obstacles" validate:"required,min=1,dive,required"`
	Length           int                `json:"length" koanf:"length" validate:"min=1"`
	SpeedMultipliers map[string]float64 `json:"speed_multipliers,omitempty" koanf:"speed_multipliers" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
}

// Multiplier returns the speed multiplier for obstacle, or 1 when the level
// does not define one.
func (l Level) Multiplier(obstacle string) float64 {
	if m, ok := l.SpeedMultipliers[obstacle]; ok {
		return m
	}
	return 1
}

// Validate checks the struct tags and that every multiplier refers to one of
// the level's obstacle types.
func (l Level) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidLevel, l.Name, err)
	}
	for obstacle := range l.SpeedMultipliers {
		if !slices.Contains(l.ObstacleTypes, obstacle) {
			return fmt.Errorf("%w: %q: multiplier for unknown obstacle %q", ErrInvalidLevel, l.Name, obstacle)
		}
	}
	return nil
}

func (l Level) clone() Level {
	out := l
	out.ObstacleTypes = slices.Clone(l.ObstacleTypes)
	if l.SpeedMultipliers != nil {
		out.SpeedMultipliers = make(map[string]float64, len(l.SpeedMultipliers))
		for k, v := range l.SpeedMultipliers {
			out.SpeedMultipliers[k] = v
		}
	}
	return out
}

var validate = validator.New()

// Catalog is a static ordered list of levels. It is safe for concurrent
// use because it never changes after construction.
type Catalog struct {
	levels []Level
}

// DefaultLevels returns the three stock levels.
func DefaultLevels() []Level {
	return []Level{
		{Name: "Gallery 1", ObstacleTypes: []string{Laser, Camera}, Length: 10},
		{Name: "Gallery 2", ObstacleTypes: []string{Laser, Camera, Guard}, Length: 15},
		{Name: "Vault", ObstacleTypes: []string{Laser, Camera, Guard, Trapdoor}, Length: 20},
	}
}

// DefaultCatalog returns a catalog of DefaultLevels.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultLevels()...)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates levels and returns a catalog holding copies of them.
func NewCatalog(levels ...Level) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{levels: make([]Level, 0, len(levels))}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		c.levels = append(c.levels, l.clone())
	}
	return c, nil
}

// Get returns the level at index. Indices past the end return the last
// level and negative indices return the first.
func (c *Catalog) Get(index int) Level {
	return c.levels[c.Clamp(index)].clone()
}

// Clamp maps index onto the catalog the same way Get does.
func (c *Catalog) Clamp(index int) int {
	switch {
	case index < 0:
		return 0
	case index >= len(c.levels):
		return len(c.levels) - 1
	}
	return index
}

// Len returns the number of levels.
func (c *Catalog) Len() int { return len(c.levels) }

// Levels returns a copy of every level in order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	for i, l := range c.levels {
		out[i] = l.clone()
	}
	return out
}
