package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

// timeLayouts are the timestamp shapes the partner APIs emit. Values without
// a zone are read as UTC so wall-clock hours survive storage unchanged.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// DecodeOrder maps one API record onto an order. Keys match
// case-insensitively; unparseable timestamps and numbers become nil.
func DecodeOrder(rec map[string]any) models.MaintenanceOrder {
	return models.MaintenanceOrder{
		OS:          getString(rec, "os"),
		Empresa:     getString(rec, "empresa"),
		RazaoSocial: getString(rec, "razaosocial"),
		EmpresaID:   getInt(rec, "empresa_id"),

		GrupoSetor:   getString(rec, "grupo_setor"),
		Oficina:      getString(rec, "oficina"),
		Tipo:         getString(rec, "tipo"),
		Prioridade:   getString(rec, "prioridade"),
		Complexidade: getString(rec, "complexidade"),
		Tag:          getString(rec, "tag"),
		Patrimonio:   getString(rec, "patrimonio"),
		Equipamento:  getString(rec, "equipamento"),
		Setor:        getString(rec, "setor"),

		Abertura:        getTime(rec, "abertura"),
		Parada:          getTime(rec, "parada"),
		Funcionamento:   getTime(rec, "funcionamento"),
		Fechamento:      getTime(rec, "fechamento"),
		DataAtendimento: getTime(rec, "data_atendimento"),
		DataSolucao:     getTime(rec, "data_solucao"),

		Ocorrencia: getString(rec, "ocorrencia"),
		Causa:      getString(rec, "causa"),
		Fornecedor: getString(rec, "fornecedor"),

		CustoOS:             getFloat(rec, "custo_os"),
		CustoMO:             getFloat(rec, "custo_mo"),
		CustoPeca:           getFloat(rec, "custo_peca"),
		CustoServicoExterno: getFloat(rec, "custo_servicoexterno"),

		Responsavel:    getString(rec, "responsavel"),
		Solicitante:    getString(rec, "solicitante"),
		TipoManutencao: getString(rec, "tipomanutencao"),
		Situacao:       getString(rec, "situacao"),
		SituacaoInt:    getInt(rec, "situacao_int"),

		Familia:         getString(rec, "familia"),
		Modelo:          getString(rec, "modelo"),
		TipoEquipamento: getString(rec, "tipoequipamento"),
		Fabricante:      getString(rec, "fabricante"),
		NSerie:          getString(rec, "nserie"),
	}
}

// DecodeEquipment maps equipment records (capitalized keys such as Tag or
// TipoEquipamento) and keeps the first record per tag. Records without a
// tag cannot be merged and are dropped.
func DecodeEquipment(records []map[string]any) []models.Equipment {
	seen := map[string]bool{}
	out := make([]models.Equipment, 0, len(records))
	for _, rec := range records {
		e := models.Equipment{
			Tag:             getString(rec, "tag"),
			Familia:         getString(rec, "familia"),
			Modelo:          getString(rec, "modelo"),
			TipoEquipamento: getString(rec, "tipoequipamento"),
			Fabricante:      getString(rec, "fabricante"),
			NSerie:          getString(rec, "nserie"),
		}
		if e.Tag == "" || seen[e.Tag] {
			continue
		}
		seen[e.Tag] = true
		out = append(out, e)
	}
	return out
}

func lookup(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, v != nil
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, v != nil
		}
	}
	return nil, false
}

func getString(m map[string]any, key string) string {
	v, ok := lookup(m, key)
	if !ok {
		return ""
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

func getInt(m map[string]any, key string) *int {
	f := getFloat(m, key)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	i := int(*f)
	return &i
}

func getFloat(m map[string]any, key string) *float64 {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, ok := parseNumber(t)
		if !ok {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseNumber reads "1234.5" and the comma-decimal "1.234,5".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func getTime(m map[string]any, key string) *time.Time {
	s := getString(m, key)
	if s == "" {
		return nil
	}
	return ParseTime(s)
}

// ParseTime tries every known layout and returns nil when none fits.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
