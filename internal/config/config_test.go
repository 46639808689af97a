package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SOURCE_MIN_INTERVAL", "1s")
	t.Setenv("BUILDING_EMPRESA_IDS", "4, 5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.SourceMinInterval != time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.ClinicalBatchSize != 100 || cfg.BuildingBatchSize != 50 || cfg.DaysBack != 730 {
		t.Fatalf("unexpected ingestion defaults: %+v", cfg)
	}
	ids, err := cfg.EmpresaIDs()
	if err != nil || len(ids) != 2 || ids[0] != 4 || ids[1] != 5 {
		t.Fatalf("unexpected empresa ids: %v %v", ids, err)
	}
}

func TestLoadRejectsBadEmpresaIDs(t *testing.T) {
	t.Setenv("BUILDING_EMPRESA_IDS", "1,x")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric tenant id")
	}
}

func TestSourceSettings(t *testing.T) {
	t.Setenv("AGIR_API_TOKEN", "tok")
	t.Setenv("BUILDING_EMPRESA_IDS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := cfg.SourceSettings()
	if s.AgirToken != "tok" || len(s.EmpresaIDs) != 1 || s.EmpresaIDs[0] != 7 {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.MinInterval != 200*time.Millisecond || s.FixturesDir != "fixtures" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}
