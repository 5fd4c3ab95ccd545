package menu

import (
	"context"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// Importer loads a menu document and writes it into the dish catalogue.
type Importer struct {
	loader   Loader
	dishRepo repository.DishRepository
	logger   zerolog.Logger
}

// NewImporter creates a new menu importer.
func NewImporter(loader Loader, dishRepo repository.DishRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:   loader,
		dishRepo: dishRepo,
		logger:   logger.With().Str("component", "menu-importer").Logger(),
	}
}

// Import loads the menu document at path and upserts every dish into the
// catalogue. A document with an invalid entry is rejected as a whole so a
// partial menu never goes live.
func (i *Importer) Import(ctx context.Context, path string) error {
	doc, err := i.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load menu document: %w", err)
	}

	dishes := make([]model.Dish, 0, len(doc.Dishes))
	for _, entry := range doc.Dishes {
		dish, err := toDish(entry)
		if err != nil {
			i.logger.Error().
				Err(err).
				Str("dish_id", entry.ID).
				Msg("invalid menu entry")
			return fmt.Errorf("invalid menu entry %q: %w", entry.ID, err)
		}
		dishes = append(dishes, dish)
	}

	if err := i.dishRepo.Upsert(ctx, dishes); err != nil {
		return fmt.Errorf("failed to import menu: %w", err)
	}

	i.logger.Info().
		Str("path", path).
		Int("dishes", len(dishes)).
		Msg("menu imported")

	return nil
}

// toDish validates a menu entry and converts it to a catalogue dish.
func toDish(entry Entry) (model.Dish, error) {
	if entry.ID == "" {
		return model.Dish{}, fmt.Errorf("missing dish id")
	}
	if entry.Name == "" {
		return model.Dish{}, fmt.Errorf("missing dish name")
	}
	if entry.Price.IsNegative() {
		return model.Dish{}, fmt.Errorf("negative price %s", entry.Price)
	}
	if entry.Calories < 0 {
		return model.Dish{}, fmt.Errorf("negative calories %d", entry.Calories)
	}

	available := true
	if entry.Available != nil {
		available = *entry.Available
	}

	return model.Dish{
		ID:          entry.ID,
		Name:        entry.Name,
		Price:       entry.Price,
		Calories:    entry.Calories,
		Ingredients: entry.Ingredients,
		Available:   available,
	}, nil
}
