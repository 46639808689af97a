package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestClinicalClient_FetchOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "secret" || r.Header.Get("Usuario") != "bi" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("data_abertura_inicio") != "2024-01-01T00:00:00Z" || q.Get("data_abertura_fim") != "2024-01-31T00:00:00Z" {
			t.Errorf("unexpected window: %s", r.URL.RawQuery)
		}
		if q.Get("situacao_int") != situacaoAll {
			t.Errorf("unexpected situacao_int: %s", q.Get("situacao_int"))
		}
		_, _ = w.Write([]byte(`[{"os":"1","empresa":"HSL","abertura":"2024-01-02T08:00:00"}]`))
	}))
	defer srv.Close()

	c := NewClinicalClient(srv.URL+"/consulta_os", srv.URL+"/consulta_equipamento", "secret", "bi", 0)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orders, err := c.FetchOrders(context.Background(), from, from.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(orders) != 1 || orders[0].OS != "1" || orders[0].Abertura == nil {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	bad := NewClinicalClient(srv.URL, srv.URL, "wrong", "bi", 0)
	if _, err := bad.FetchEquipment(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClinicalClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClinicalClient(srv.URL, srv.URL, "t", "u", 0)
	if _, err := c.FetchOrders(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestBuildingClient_SkipsFailingTenant(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Query().Get("empresa_id") {
		case "1":
			_, _ = w.Write([]byte(`[{"os":"B-1","empresa":"HSL"},{"os":"B-2","empresa":"HSL","empresa_id":7}]`))
		case "2":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	b := NewBuildingClient(srv.URL, "token", []int{1, 2, 3}, 0, zerolog.Nop())
	orders, err := b.FetchOrders(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected one request per tenant, got %d", calls)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].EmpresaID == nil || *orders[0].EmpresaID != 1 {
		t.Fatalf("expected tenant id to be filled in, got %v", orders[0].EmpresaID)
	}
	if *orders[1].EmpresaID != 7 {
		t.Fatalf("expected record empresa_id to win, got %d", *orders[1].EmpresaID)
	}
}

func TestBuildingClient_AllTenantsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBuildingClient(srv.URL, "token", []int{1, 2}, 0, zerolog.Nop())
	if _, err := b.FetchOrders(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatalf("expected error when every tenant fails")
	}
}

func TestRequesterMinInterval(t *testing.T) {
	r := &requester{MinInterval: 40 * time.Millisecond}
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := r.wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected spacing between requests, took %s", elapsed)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	r.MinInterval = time.Hour
	if err := r.wait(cancelled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFixtureSource(t *testing.T) {
	f := &FixtureSource{Path: "testdata/clinical.json"}
	orders, err := f.FetchOrders(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].CustoOS == nil || *orders[0].CustoOS != 150.5 {
		t.Fatalf("unexpected cost: %v", orders[0].CustoOS)
	}
	if orders[2].Fechamento != nil || orders[2].CustoOS != nil {
		t.Fatalf("expected nulls on open order: %+v", orders[2])
	}
	equipment, err := f.FetchEquipment(context.Background())
	if err != nil {
		t.Fatalf("equipment: %v", err)
	}
	if len(equipment) != 1 || equipment[0].Modelo != "BX-200" {
		t.Fatalf("unexpected equipment: %+v", equipment)
	}

	missing := &FixtureSource{Path: "testdata/missing.json"}
	if _, err := missing.FetchOrders(context.Background(), time.Time{}, time.Time{}); err == nil {
		t.Fatalf("expected error for missing fixture")
	}
}
