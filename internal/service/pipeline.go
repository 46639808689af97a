package service

import (
	"github.com/healthcare-bi/backend/internal/models"
)

// DedupeOrders drops repeated (os, empresa) pairs, keeping the last record
// for each pair at the position of its first occurrence. Orders without an
// order number are discarded.
func DedupeOrders(orders []models.MaintenanceOrder) (out []models.MaintenanceOrder, dropped int) {
	index := make(map[[2]string]int, len(orders))
	out = make([]models.MaintenanceOrder, 0, len(orders))
	for _, o := range orders {
		if o.OS == "" {
			dropped++
			continue
		}
		key := [2]string{o.OS, o.Empresa}
		if i, ok := index[key]; ok {
			out[i] = o
			dropped++
			continue
		}
		index[key] = len(out)
		out = append(out, o)
	}
	return out, dropped
}

// MergeEquipment copies equipment attributes onto orders by tag. The first
// equipment record per tag is used; empty attributes leave the order as is.
func MergeEquipment(orders []models.MaintenanceOrder, equipment []models.Equipment) int {
	byTag := make(map[string]models.Equipment, len(equipment))
	for _, e := range equipment {
		if e.Tag == "" {
			continue
		}
		if _, exists := byTag[e.Tag]; !exists {
			byTag[e.Tag] = e
		}
	}
	merged := 0
	for i := range orders {
		e, ok := byTag[orders[i].Tag]
		if !ok || orders[i].Tag == "" {
			continue
		}
		setIfPresent(&orders[i].Familia, e.Familia)
		setIfPresent(&orders[i].Modelo, e.Modelo)
		setIfPresent(&orders[i].TipoEquipamento, e.TipoEquipamento)
		setIfPresent(&orders[i].Fabricante, e.Fabricante)
		setIfPresent(&orders[i].NSerie, e.NSerie)
		merged++
	}
	return merged
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Batches splits orders into consecutive slices of at most size elements.
func Batches(orders []models.MaintenanceOrder, size int) [][]models.MaintenanceOrder {
	if size <= 0 {
		size = len(orders)
	}
	var out [][]models.MaintenanceOrder
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		out = append(out, orders[start:end])
	}
	return out
}
