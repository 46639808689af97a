package source

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/models"
)

var ErrUnauthorized = errors.New("source rejected credentials")

// Source is a partner API that delivers work orders and, for clinical data,
// the equipment registry merged into them by tag.
type Source interface {
	FetchOrders(ctx context.Context, from, to time.Time) ([]models.MaintenanceOrder, error)
	FetchEquipment(ctx context.Context) ([]models.Equipment, error)
}

type Settings struct {
	APIToken             string
	APIUser              string
	ClinicalOSURL        string
	ClinicalEquipmentURL string
	AgirToken            string
	AgirOSURL            string
	EmpresaIDs           []int
	MinInterval          time.Duration
	Timeout              time.Duration
	FixturesDir          string
}

// ForDataset returns the live client for a dataset, or a fixture source when
// no token is configured for it.
func ForDataset(dataset models.Dataset, s Settings, logger zerolog.Logger) Source {
	switch dataset {
	case models.DatasetBuilding:
		if s.AgirToken == "" {
			return &FixtureSource{Path: filepath.Join(s.FixturesDir, "building.json")}
		}
		return &BuildingClient{
			BaseURL:    s.AgirOSURL,
			Token:      s.AgirToken,
			EmpresaIDs: s.EmpresaIDs,
			Logger:     logger,
			requester:  newRequester(s.Timeout, s.MinInterval),
		}
	default:
		if s.APIToken == "" {
			return &FixtureSource{Path: filepath.Join(s.FixturesDir, "clinical.json")}
		}
		return &ClinicalClient{
			OrdersURL:    s.ClinicalOSURL,
			EquipmentURL: s.ClinicalEquipmentURL,
			Token:        s.APIToken,
			User:         s.APIUser,
			requester:    newRequester(s.Timeout, s.MinInterval),
		}
	}
}

// situacaoAll requests orders in every status.
const situacaoAll = "0,1,2,3,4,5,6,7,8,9,10,11"
