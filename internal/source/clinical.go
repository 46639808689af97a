package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

// ClinicalClient reads the clinical engineering query API: consulta_os for
// work orders and consulta_equipamento for the equipment registry.
type ClinicalClient struct {
	OrdersURL    string
	EquipmentURL string
	Token        string
	User         string

	requester *requester
}

func NewClinicalClient(ordersURL, equipmentURL, token, user string, minInterval time.Duration) *ClinicalClient {
	return &ClinicalClient{
		OrdersURL:    ordersURL,
		EquipmentURL: equipmentURL,
		Token:        token,
		User:         user,
		requester:    newRequester(0, minInterval),
	}
}

func (c *ClinicalClient) headers() map[string]string {
	return map[string]string{"X-API-KEY": c.Token, "Usuario": c.User}
}

func (c *ClinicalClient) FetchOrders(ctx context.Context, from, to time.Time) ([]models.MaintenanceOrder, error) {
	q := url.Values{}
	q.Set("data_abertura_inicio", from.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("data_abertura_fim", to.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("situacao_int", situacaoAll)

	records, err := c.requester.getRecords(ctx, c.OrdersURL+"?"+q.Encode(), c.headers())
	if err != nil {
		return nil, fmt.Errorf("fetch clinical orders: %w", err)
	}
	orders := make([]models.MaintenanceOrder, 0, len(records))
	for _, rec := range records {
		orders = append(orders, DecodeOrder(rec))
	}
	return orders, nil
}

func (c *ClinicalClient) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	records, err := c.requester.getRecords(ctx, c.EquipmentURL, c.headers())
	if err != nil {
		return nil, fmt.Errorf("fetch equipment: %w", err)
	}
	return DecodeEquipment(records), nil
}
