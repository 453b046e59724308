// Command seed loads the default tags and an ingredient dictionary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"foodgram/internal/app"
	"foodgram/internal/config"
	"foodgram/internal/logging"
	"foodgram/internal/model"
	"foodgram/internal/platform/database"
	"foodgram/internal/repository"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	path := flag.String("ingredients", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

	if err := run(*path); err != nil {
		logging.Fatal().Err(err).Msg("seed failed")
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ingredients, err := readIngredients(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := model.Migrate(db); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	catalog := app.NewCatalogService(repository.NewTagRepository(db), repository.NewIngredientRepository(db))
	result, err := catalog.Seed(ctx, ingredients)
	if err != nil {
		return err
	}
	logging.Info().
		Int64("tags_added", result.TagsAdded).
		Int64("ingredients_added", result.IngredientsAdded).
		Int("ingredients_read", len(ingredients)).
		Msg("seed completed")
	return nil
}

func readIngredients(path string) ([]model.Ingredient, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ingredients file failed: %w", err)
	}
	var records []ingredientRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode ingredients file failed: %w", err)
	}
	out := make([]model.Ingredient, 0, len(records))
	for _, r := range records {
		if r.Name == "" || r.MeasurementUnit == "" {
			continue
		}
		out = append(out, model.Ingredient{Name: r.Name, MeasurementUnit: r.MeasurementUnit})
	}
	return out, nil
}
