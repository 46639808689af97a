package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/models"
)

// BuildingClient reads building engineering orders from the AGIR API, one
// request per tenant (empresa_id). A failing tenant is logged and skipped.
type BuildingClient struct {
	BaseURL    string
	Token      string
	EmpresaIDs []int
	Logger     zerolog.Logger

	requester *requester
}

func NewBuildingClient(baseURL, token string, empresaIDs []int, minInterval time.Duration, logger zerolog.Logger) *BuildingClient {
	return &BuildingClient{
		BaseURL:    baseURL,
		Token:      token,
		EmpresaIDs: empresaIDs,
		Logger:     logger,
		requester:  newRequester(0, minInterval),
	}
}

// FetchOrders ignores to; the AGIR query only takes a start date.
func (b *BuildingClient) FetchOrders(ctx context.Context, from, to time.Time) ([]models.MaintenanceOrder, error) {
	headers := map[string]string{"X-API-KEY": b.Token}
	var orders []models.MaintenanceOrder
	failures := 0
	for _, empresaID := range b.EmpresaIDs {
		q := url.Values{}
		q.Set("data_abertura_inicio", from.UTC().Format("2006-01-02T15:04"))
		q.Set("empresa_id", strconv.Itoa(empresaID))
		q.Set("situacao_int", situacaoAll)

		b.Logger.Info().Int("empresa_id", empresaID).Msg("fetching building orders")
		records, err := b.requester.getRecords(ctx, b.BaseURL+"?"+q.Encode(), headers)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrUnauthorized) {
				return nil, fmt.Errorf("fetch building orders: %w", err)
			}
			b.Logger.Error().Err(err).Int("empresa_id", empresaID).Msg("building orders request failed")
			failures++
			continue
		}
		for _, rec := range records {
			o := DecodeOrder(rec)
			if o.EmpresaID == nil {
				id := empresaID
				o.EmpresaID = &id
			}
			orders = append(orders, o)
		}
	}
	if failures > 0 && failures == len(b.EmpresaIDs) {
		return nil, fmt.Errorf("fetch building orders: all %d tenants failed", failures)
	}
	b.Logger.Info().Int("orders", len(orders)).Msg("building orders fetched")
	return orders, nil
}

// FetchEquipment returns nothing; building orders carry no equipment registry.
func (b *BuildingClient) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	return nil, nil
}
