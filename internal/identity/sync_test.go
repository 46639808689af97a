package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/models"
)

func TestSync_CreatesUpdatesAndSkips(t *testing.T) {
	store := &memStore{companies: []models.Company{
		{ID: "c1", Name: "Old Name", Acronym: "hsl", IsActive: true},
		{ID: "c2", Name: "Same Name SA", Acronym: "same", IsActive: true},
	}}
	s := &Synchronizer{Resolver: NewResolver(store, zerolog.Nop())}

	summary, err := s.Sync(context.Background(), []models.CompanyPair{
		{Empresa: "HSL", RazaoSocial: "Hospital Sao Lucas SA"},
		{Empresa: "SAME", RazaoSocial: "Same Name SA"},
		{Empresa: "Nova Clinica", RazaoSocial: "Nova Clinica LTDA"},
		{Empresa: "", RazaoSocial: "ignored"},
		{Empresa: "nova clinica", RazaoSocial: "Nova Clinica LTDA"},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	want := SyncSummary{Pairs: 3, Created: 1, Updated: 1, Unchanged: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	if store.companies[0].Name != "Hospital Sao Lucas SA" {
		t.Fatalf("expected name update, got %q", store.companies[0].Name)
	}
	created := store.companies[2]
	if created.Acronym != "nova-clinica" || created.Name != "Nova Clinica LTDA" {
		t.Fatalf("unexpected created company: %+v", created)
	}
	if id, ok := s.Resolver.Cache.LookupName("hospital sao lucas sa"); !ok || id != "c1" {
		t.Fatalf("expected cache to follow the rename, got %q %v", id, ok)
	}
	if _, ok := s.Resolver.Cache.LookupName("old name"); ok {
		t.Fatalf("expected old name to be dropped from the cache")
	}
}

func TestSync_IsIdempotent(t *testing.T) {
	store := &memStore{}
	s := &Synchronizer{Resolver: NewResolver(store, zerolog.Nop())}
	pairs := []models.CompanyPair{{Empresa: "ACME", RazaoSocial: "Acme Industria SA"}}

	if _, err := s.Sync(context.Background(), pairs); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	summary, err := s.Sync(context.Background(), pairs)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.Created != 0 || summary.Unchanged != 1 || store.inserts != 1 {
		t.Fatalf("expected no new companies on rerun, got %+v inserts=%d", summary, store.inserts)
	}
}

func TestSync_ReusesInactiveCollision(t *testing.T) {
	store := &memStore{companies: []models.Company{
		{ID: "old", Name: "Acme", Acronym: "acme", IsActive: false},
	}}
	s := &Synchronizer{Resolver: NewResolver(store, zerolog.Nop())}

	summary, err := s.Sync(context.Background(), []models.CompanyPair{{Empresa: "Acme", RazaoSocial: "Acme SA"}})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if summary.Updated != 1 || store.inserts != 0 {
		t.Fatalf("expected reuse plus rename, got %+v inserts=%d", summary, store.inserts)
	}
	if store.companies[0].Name != "Acme SA" {
		t.Fatalf("expected rename of reused company, got %q", store.companies[0].Name)
	}
}

func TestSync_CountsFailures(t *testing.T) {
	store := &memStore{insertErr: errors.New("boom")}
	s := &Synchronizer{Resolver: NewResolver(store, zerolog.Nop())}

	summary, err := s.Sync(context.Background(), []models.CompanyPair{{Empresa: "X", RazaoSocial: "X SA"}})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", summary)
	}
}

func TestSync_StopsOnCancelledContext(t *testing.T) {
	store := &memStore{}
	s := &Synchronizer{Resolver: NewResolver(store, zerolog.Nop())}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Sync(ctx, []models.CompanyPair{{Empresa: "X", RazaoSocial: "X SA"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
