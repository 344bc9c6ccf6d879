// Package catalog holds the static wheel configuration: the ordered sections
// with their dishes, and the fallback content shown when the recommendation
// service is unavailable.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/chrisdamba/whattoeat/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const genericFunFact = "Did you know? Trying a new cuisine is one of the easiest ways to explore another culture."

type Catalog struct {
	Sections       []models.WheelSection                            `yaml:"sections"`
	FunFacts       map[models.FoodCategory]string                   `yaml:"fun_facts"`
	FallbackDishes map[models.FoodCategory][]models.RecommendedDish `yaml:"fallback_dishes"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the default one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for i := range c.Sections {
		for j := range c.Sections[i].Items {
			item := &c.Sections[i].Items[j]
			if item.Category == "" {
				item.Category = c.Sections[i].Category
			}
			if item.Cuisine == "" {
				item.Cuisine = c.Sections[i].Label
			}
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if len(c.Sections) == 0 {
		return errors.New("catalog has no sections")
	}
	seen := make(map[models.FoodCategory]bool, len(c.Sections))
	for i, s := range c.Sections {
		if s.Category == "" {
			return fmt.Errorf("section %d has no category", i)
		}
		if seen[s.Category] {
			return fmt.Errorf("duplicate section category %q", s.Category)
		}
		seen[s.Category] = true
		if len(s.Items) == 0 {
			return fmt.Errorf("section %q has no items", s.Category)
		}
		for _, item := range s.Items {
			if item.HealthRating < 1 || item.HealthRating > 5 {
				return fmt.Errorf("item %q health rating %d outside 1..5", item.ID, item.HealthRating)
			}
			if item.Category != s.Category {
				return fmt.Errorf("item %q is filed under %q but listed in %q", item.ID, item.Category, s.Category)
			}
		}
	}
	return nil
}

// Section looks a section up by category and returns its wheel index.
func (c *Catalog) Section(category models.FoodCategory) (models.WheelSection, int, bool) {
	for i, s := range c.Sections {
		if s.Category == category {
			return s, i, true
		}
	}
	return models.WheelSection{}, -1, false
}

func (c *Catalog) FunFact(category models.FoodCategory) string {
	if fact, ok := c.FunFacts[category]; ok {
		return fact
	}
	return genericFunFact
}

// FallbackRecommendation is the canned recommendation for category.
func (c *Catalog) FallbackRecommendation(category models.FoodCategory) *models.Recommendation {
	return &models.Recommendation{
		FunFact:           c.FunFact(category),
		RecommendedDishes: c.FallbackDishes[category],
		Fallback:          true,
	}
}
