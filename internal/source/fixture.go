package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

// FixtureSource serves records from a JSON file shaped like
// {"orders": [...], "equipment": [...]}, each entry in the partner API's own
// record format. It stands in for the live APIs when no token is configured.
// The fetch window is ignored.
type FixtureSource struct {
	Path string
}

type fixtureFile struct {
	Orders    []map[string]any `json:"orders"`
	Equipment []map[string]any `json:"equipment"`
}

func (f *FixtureSource) load() (fixtureFile, error) {
	var out fixtureFile
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return out, fmt.Errorf("read fixture: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode fixture %s: %w", f.Path, err)
	}
	return out, nil
}

func (f *FixtureSource) FetchOrders(ctx context.Context, from, to time.Time) ([]models.MaintenanceOrder, error) {
	file, err := f.load()
	if err != nil {
		return nil, err
	}
	orders := make([]models.MaintenanceOrder, 0, len(file.Orders))
	for _, rec := range file.Orders {
		orders = append(orders, DecodeOrder(rec))
	}
	return orders, nil
}

func (f *FixtureSource) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	file, err := f.load()
	if err != nil {
		return nil, err
	}
	return DecodeEquipment(file.Equipment), nil
}
