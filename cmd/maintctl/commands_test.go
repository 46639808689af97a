package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

func TestParseDatasets(t *testing.T) {
	all, err := parseDatasets("all")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected both datasets, got %v %v", all, err)
	}
	one, err := parseDatasets("building")
	if err != nil || len(one) != 1 || one[0] != models.DatasetBuilding {
		t.Fatalf("unexpected datasets: %v %v", one, err)
	}
	if _, err := parseDatasets("hr"); err == nil {
		t.Fatalf("expected error for unknown dataset")
	}
}

func TestIngestRejectsUnknownDatasetBeforeConnecting(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ingest", "hr"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "dataset") {
		t.Fatalf("expected dataset error, got %v", err)
	}
}

func TestBuildReport(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(4 * time.Hour)
	t2 := t0.Add(48 * time.Hour)
	t3 := t2.Add(2 * time.Hour)
	orders := []models.MaintenanceOrder{
		{OS: "1", Setor: "UTI", Equipamento: "Monitor", Abertura: &t0, Fechamento: &t1},
		{OS: "2", Setor: "UTI", Equipamento: "Monitor", Abertura: &t2, Fechamento: &t3},
	}
	r := buildReport(orders, "setor")
	if r.Orders != 2 || len(r.MTBF) != 1 || r.MTBF[0].Key != "UTI" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if len(r.MTTR) != 1 || r.MTTR[0].MTTRHours != 3 {
		t.Fatalf("unexpected mttr: %+v", r.MTTR)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), `"availability"`) {
		t.Fatalf("expected availability table in output")
	}
}
