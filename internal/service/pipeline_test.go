package service

import (
	"testing"

	"github.com/healthcare-bi/backend/internal/models"
)

func TestDedupeOrders(t *testing.T) {
	orders := []models.MaintenanceOrder{
		{OS: "1", Empresa: "A", Situacao: "Aberto"},
		{OS: "1", Empresa: "B"},
		{OS: "2", Empresa: "A"},
		{OS: "1", Empresa: "A", Situacao: "Fechado"},
		{OS: "", Empresa: "A"},
	}
	got, dropped := DedupeOrders(orders)
	if len(got) != 3 || dropped != 2 {
		t.Fatalf("expected 3 kept and 2 dropped, got %d and %d", len(got), dropped)
	}
	if got[0].Situacao != "Fechado" {
		t.Fatalf("expected last duplicate to win, got %+v", got[0])
	}
	if got[1].Empresa != "B" || got[2].OS != "2" {
		t.Fatalf("expected first-seen order to be kept: %+v", got)
	}
}

func TestMergeEquipment(t *testing.T) {
	orders := []models.MaintenanceOrder{
		{OS: "1", Tag: "EQ-1", Modelo: "from-order"},
		{OS: "2", Tag: "EQ-9"},
		{OS: "3"},
	}
	equipment := []models.Equipment{
		{Tag: "EQ-1", Familia: "Bomba", Fabricante: "Braun"},
		{Tag: "EQ-1", Familia: "Second"},
		{Tag: "", Familia: "Orphan"},
	}
	merged := MergeEquipment(orders, equipment)
	if merged != 1 {
		t.Fatalf("expected 1 merged order, got %d", merged)
	}
	if orders[0].Familia != "Bomba" || orders[0].Fabricante != "Braun" || orders[0].Modelo != "from-order" {
		t.Fatalf("unexpected merge result: %+v", orders[0])
	}
	if orders[2].Familia != "" {
		t.Fatalf("untagged order must not pick up equipment: %+v", orders[2])
	}
}

func TestBatches(t *testing.T) {
	orders := make([]models.MaintenanceOrder, 5)
	cases := []struct {
		size int
		want []int
	}{
		{2, []int{2, 2, 1}},
		{5, []int{5}},
		{10, []int{5}},
		{0, []int{5}},
	}
	for _, tc := range cases {
		got := Batches(orders, tc.size)
		if len(got) != len(tc.want) {
			t.Fatalf("size %d: expected %d batches, got %d", tc.size, len(tc.want), len(got))
		}
		for i, b := range got {
			if len(b) != tc.want[i] {
				t.Fatalf("size %d batch %d: expected %d, got %d", tc.size, i, tc.want[i], len(b))
			}
		}
	}
	if Batches(nil, 3) != nil {
		t.Fatalf("expected no batches for no orders")
	}
}
