package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/reliability"
)

type orderColumn struct {
	name  string
	text  bool
	value func(o *models.MaintenanceOrder) any
	dest  func(o *models.MaintenanceOrder) any
}

func textColumn(name string, field func(o *models.MaintenanceOrder) *string) orderColumn {
	return orderColumn{
		name:  name,
		text:  true,
		value: func(o *models.MaintenanceOrder) any { return nullIfEmpty(*field(o)) },
		dest:  func(o *models.MaintenanceOrder) any { return field(o) },
	}
}

func column[T any](name string, field func(o *models.MaintenanceOrder) *T) orderColumn {
	return orderColumn{
		name:  name,
		value: func(o *models.MaintenanceOrder) any { return *field(o) },
		dest:  func(o *models.MaintenanceOrder) any { return field(o) },
	}
}

// orderColumns is the column order used by every order query. os and
// company_id come first; together they are the upsert key.
var orderColumns = []orderColumn{
	textColumn("os", func(o *models.MaintenanceOrder) *string { return &o.OS }),
	column("company_id", func(o *models.MaintenanceOrder) **string { return &o.CompanyID }),
	textColumn("empresa", func(o *models.MaintenanceOrder) *string { return &o.Empresa }),
	textColumn("razaosocial", func(o *models.MaintenanceOrder) *string { return &o.RazaoSocial }),
	column("empresa_id", func(o *models.MaintenanceOrder) **int { return &o.EmpresaID }),
	textColumn("grupo_setor", func(o *models.MaintenanceOrder) *string { return &o.GrupoSetor }),
	textColumn("oficina", func(o *models.MaintenanceOrder) *string { return &o.Oficina }),
	textColumn("tipo", func(o *models.MaintenanceOrder) *string { return &o.Tipo }),
	textColumn("prioridade", func(o *models.MaintenanceOrder) *string { return &o.Prioridade }),
	textColumn("complexidade", func(o *models.MaintenanceOrder) *string { return &o.Complexidade }),
	textColumn("tag", func(o *models.MaintenanceOrder) *string { return &o.Tag }),
	textColumn("patrimonio", func(o *models.MaintenanceOrder) *string { return &o.Patrimonio }),
	textColumn("equipamento", func(o *models.MaintenanceOrder) *string { return &o.Equipamento }),
	textColumn("setor", func(o *models.MaintenanceOrder) *string { return &o.Setor }),
	column("abertura", func(o *models.MaintenanceOrder) **time.Time { return &o.Abertura }),
	column("parada", func(o *models.MaintenanceOrder) **time.Time { return &o.Parada }),
	column("funcionamento", func(o *models.MaintenanceOrder) **time.Time { return &o.Funcionamento }),
	column("fechamento", func(o *models.MaintenanceOrder) **time.Time { return &o.Fechamento }),
	column("data_atendimento", func(o *models.MaintenanceOrder) **time.Time { return &o.DataAtendimento }),
	column("data_solucao", func(o *models.MaintenanceOrder) **time.Time { return &o.DataSolucao }),
	textColumn("ocorrencia", func(o *models.MaintenanceOrder) *string { return &o.Ocorrencia }),
	textColumn("causa", func(o *models.MaintenanceOrder) *string { return &o.Causa }),
	textColumn("fornecedor", func(o *models.MaintenanceOrder) *string { return &o.Fornecedor }),
	column("custo_os", func(o *models.MaintenanceOrder) **float64 { return &o.CustoOS }),
	column("custo_mo", func(o *models.MaintenanceOrder) **float64 { return &o.CustoMO }),
	column("custo_peca", func(o *models.MaintenanceOrder) **float64 { return &o.CustoPeca }),
	column("custo_servicoexterno", func(o *models.MaintenanceOrder) **float64 { return &o.CustoServicoExterno }),
	textColumn("responsavel", func(o *models.MaintenanceOrder) *string { return &o.Responsavel }),
	textColumn("solicitante", func(o *models.MaintenanceOrder) *string { return &o.Solicitante }),
	textColumn("tipomanutencao", func(o *models.MaintenanceOrder) *string { return &o.TipoManutencao }),
	textColumn("situacao", func(o *models.MaintenanceOrder) *string { return &o.Situacao }),
	column("situacao_int", func(o *models.MaintenanceOrder) **int { return &o.SituacaoInt }),
	textColumn("familia", func(o *models.MaintenanceOrder) *string { return &o.Familia }),
	textColumn("modelo", func(o *models.MaintenanceOrder) *string { return &o.Modelo }),
	textColumn("tipoequipamento", func(o *models.MaintenanceOrder) *string { return &o.TipoEquipamento }),
	textColumn("fabricante", func(o *models.MaintenanceOrder) *string { return &o.Fabricante }),
	textColumn("nserie", func(o *models.MaintenanceOrder) *string { return &o.NSerie }),
}

func orderSelectList() string {
	parts := make([]string, len(orderColumns))
	for i, c := range orderColumns {
		switch {
		case c.text:
			parts[i] = fmt.Sprintf("COALESCE(%s, '')", c.name)
		case c.name == "company_id":
			parts[i] = "company_id::text"
		default:
			parts[i] = c.name
		}
	}
	return strings.Join(parts, ", ")
}

// UpsertOrders writes orders into the dataset's table in one statement,
// updating rows that share (os, company_id). Later duplicates of a key win.
func (s *Store) UpsertOrders(ctx context.Context, dataset models.Dataset, orders []models.MaintenanceOrder) (int64, error) {
	orders = lastPerKey(orders)
	if len(orders) == 0 {
		return 0, nil
	}

	names := make([]string, len(orderColumns))
	for i, c := range orderColumns {
		names[i] = c.name
	}
	var updates []string
	for _, c := range orderColumns[2:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c.name, c.name))
	}
	updates = append(updates, "updated_at = NOW()")

	args := make([]any, 0, len(orders)*len(orderColumns))
	tuples := make([]string, 0, len(orders))
	for i := range orders {
		placeholders := make([]string, len(orderColumns))
		for j, c := range orderColumns {
			args = append(args, c.value(&orders[i]))
			placeholders[j] = fmt.Sprintf("$%d", len(args))
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ",")+")")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s
		ON CONFLICT (os, company_id) DO UPDATE SET %s`,
		dataset.Table(), strings.Join(names, ", "), strings.Join(tuples, ","), strings.Join(updates, ", "))

	tag, err := s.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert %s: %w", dataset.Table(), err)
	}
	return tag.RowsAffected(), nil
}

// ListOrders returns the dataset's orders matching f, newest opening first.
// A limit of zero returns every matching row.
func (s *Store) ListOrders(ctx context.Context, dataset models.Dataset, f reliability.Filter, limit, offset int) ([]models.MaintenanceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, orderSelectList(), dataset.Table())
	var args []any
	var wheres []string
	if f.From != nil {
		args = append(args, *f.From)
		wheres = append(wheres, fmt.Sprintf("abertura >= $%d", len(args)))
	}
	if end := f.ToExclusive(); end != nil {
		args = append(args, *end)
		wheres = append(wheres, fmt.Sprintf("abertura < $%d", len(args)))
	}
	equals := []struct{ column, value string }{
		{"empresa", f.Empresa},
		{"company_id::text", f.CompanyID},
		{"equipamento", f.Equipamento},
		{"setor", f.Setor},
		{"tipomanutencao", f.TipoManutencao},
		{"situacao", f.Situacao},
	}
	for _, e := range equals {
		if e.value == "" {
			continue
		}
		args = append(args, e.value)
		wheres = append(wheres, fmt.Sprintf("%s = $%d", e.column, len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY abertura DESC NULLS LAST, os ASC"
	if limit > 0 {
		if offset < 0 {
			offset = 0
		}
		query += " LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MaintenanceOrder{}
	for rows.Next() {
		var o models.MaintenanceOrder
		dest := make([]any, len(orderColumns))
		for i, c := range orderColumns {
			dest[i] = c.dest(&o)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DistinctCompanyPairs lists the (empresa, razaosocial) combinations present
// in the dataset's table.
func (s *Store) DistinctCompanyPairs(ctx context.Context, dataset models.Dataset) ([]models.CompanyPair, error) {
	rows, err := s.Pool.Query(ctx, fmt.Sprintf(`SELECT DISTINCT empresa, razaosocial FROM %s
		WHERE empresa IS NOT NULL AND razaosocial IS NOT NULL
		ORDER BY empresa, razaosocial`, dataset.Table()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompanyPair
	for rows.Next() {
		var p models.CompanyPair
		if err := rows.Scan(&p.Empresa, &p.RazaoSocial); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func lastPerKey(orders []models.MaintenanceOrder) []models.MaintenanceOrder {
	index := make(map[[2]string]int, len(orders))
	out := make([]models.MaintenanceOrder, 0, len(orders))
	for _, o := range orders {
		key := [2]string{o.OS, ""}
		if o.CompanyID != nil {
			key[1] = *o.CompanyID
		}
		if i, ok := index[key]; ok {
			out[i] = o
			continue
		}
		index[key] = len(out)
		out = append(out, o)
	}
	return out
}

func nullIfEmpty(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
