package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	domainproperty "rentops/internal/domain/property"
)

type propertyFixture struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Active   *bool  `json:"active"`
}

// loadPropertyFixtures seeds the property directory from a JSON array.
func loadPropertyFixtures(ctx context.Context, path string, store propertyStore, logger *slog.Logger) error {
	if strings.TrimSpace(path) == "" {
		logger.Info("no property fixtures configured")
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		if strings.TrimSpace(fx.ID) == "" || strings.TrimSpace(fx.Currency) == "" {
			logger.Error("fixture invalid", "property_id", fx.ID)
			continue
		}
		p := domainproperty.Property{
			ID:       fx.ID,
			Name:     fx.Name,
			Currency: strings.ToUpper(fx.Currency),
			Active:   fx.Active == nil || *fx.Active,
		}
		if err := store.Save(ctx, p); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", p.ID)
	}
	return nil
}
