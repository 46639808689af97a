package source

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeOrder(t *testing.T) {
	rec := map[string]any{
		"os":             json.Number("1001"),
		"Empresa":        " HSL ",
		"empresa_id":     json.Number("3"),
		"equipamento":    "PUMP-1",
		"abertura":       "2024-01-01T08:30:00",
		"fechamento":     "2024-01-01 10:00:00",
		"parada":         "not a date",
		"custo_os":       "1.234,50",
		"custo_mo":       json.Number("12.5"),
		"custo_peca":     "nan",
		"situacao":       "None",
		"situacao_int":   float64(4),
		"tipomanutencao": nil,
	}
	o := DecodeOrder(rec)

	if o.OS != "1001" || o.Empresa != "HSL" || o.Equipamento != "PUMP-1" {
		t.Fatalf("unexpected strings: %+v", o)
	}
	if o.EmpresaID == nil || *o.EmpresaID != 3 {
		t.Fatalf("unexpected empresa_id: %v", o.EmpresaID)
	}
	want := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)
	if o.Abertura == nil || !o.Abertura.Equal(want) {
		t.Fatalf("unexpected abertura: %v", o.Abertura)
	}
	if o.Fechamento == nil || o.Fechamento.Hour() != 10 {
		t.Fatalf("unexpected fechamento: %v", o.Fechamento)
	}
	if o.Parada != nil {
		t.Fatalf("expected unparseable timestamp to be nil")
	}
	if o.CustoOS == nil || *o.CustoOS != 1234.5 {
		t.Fatalf("unexpected custo_os: %v", o.CustoOS)
	}
	if o.CustoMO == nil || *o.CustoMO != 12.5 {
		t.Fatalf("unexpected custo_mo: %v", o.CustoMO)
	}
	if o.CustoPeca != nil || o.Situacao != "" || o.TipoManutencao != "" {
		t.Fatalf("expected null-like values to be empty: %+v", o)
	}
	if o.SituacaoInt == nil || *o.SituacaoInt != 4 {
		t.Fatalf("unexpected situacao_int: %v", o.SituacaoInt)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-02-03T04:05:06Z":      time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		"2024-02-03T04:05:06-03:00": time.Date(2024, 2, 3, 7, 5, 6, 0, time.UTC),
		"2024-02-03T04:05:06.123":   time.Date(2024, 2, 3, 4, 5, 6, 123000000, time.UTC),
		"2024-02-03T04:05":          time.Date(2024, 2, 3, 4, 5, 0, 0, time.UTC),
		"2024-02-03":                time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		"03/02/2024 04:05":          time.Date(2024, 2, 3, 4, 5, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got := ParseTime(in)
		if got == nil || !got.Equal(want) {
			t.Fatalf("ParseTime(%q) = %v, want %v", in, got, want)
		}
	}
	if ParseTime("yesterday") != nil {
		t.Fatalf("expected nil for garbage")
	}
}

func TestDecodeEquipment_RenamesAndKeepsFirstPerTag(t *testing.T) {
	records := []map[string]any{
		{"Tag": "EQ-1", "Familia": "Bomba", "TipoEquipamento": "Infusao", "NSerie": "A"},
		{"Tag": "EQ-1", "Familia": "Other"},
		{"Familia": "No tag"},
		{"tag": "EQ-2", "modelo": "M2"},
	}
	got := DecodeEquipment(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 equipment rows, got %d", len(got))
	}
	if got[0].Familia != "Bomba" || got[0].TipoEquipamento != "Infusao" || got[0].NSerie != "A" {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Tag != "EQ-2" || got[1].Modelo != "M2" {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestDecodeRecords(t *testing.T) {
	recs, err := decodeRecords([]byte(`{"data":[{"os":1}]}`))
	if err != nil || len(recs) != 1 {
		t.Fatalf("wrapped: %v %v", recs, err)
	}
	recs, err = decodeRecords([]byte(" null "))
	if err != nil || recs != nil {
		t.Fatalf("null: %v %v", recs, err)
	}
	if _, err := decodeRecords([]byte(`[{"os":`)); err == nil {
		t.Fatalf("expected error for truncated body")
	}
}
