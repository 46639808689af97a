package models

import (
	"encoding/json"
	"time"
)

type Dataset string

const (
	DatasetClinical Dataset = "clinical"
	DatasetBuilding Dataset = "building"
)

func (d Dataset) Table() string {
	switch d {
	case DatasetBuilding:
		return "building_orders"
	default:
		return "maintenance_orders"
	}
}

func (d Dataset) Valid() bool {
	return d == DatasetClinical || d == DatasetBuilding
}

// MaintenanceOrder is one work order as delivered by the partner APIs,
// merged with its equipment attributes. Empty strings map to NULL columns.
type MaintenanceOrder struct {
	OS          string  `json:"os"`
	CompanyID   *string `json:"company_id"`
	Empresa     string  `json:"empresa"`
	RazaoSocial string  `json:"razaosocial"`
	EmpresaID   *int    `json:"empresa_id,omitempty"`

	GrupoSetor   string `json:"grupo_setor"`
	Oficina      string `json:"oficina"`
	Tipo         string `json:"tipo"`
	Prioridade   string `json:"prioridade"`
	Complexidade string `json:"complexidade"`
	Tag          string `json:"tag"`
	Patrimonio   string `json:"patrimonio"`
	Equipamento  string `json:"equipamento"`
	Setor        string `json:"setor"`

	Abertura        *time.Time `json:"abertura"`
	Parada          *time.Time `json:"parada"`
	Funcionamento   *time.Time `json:"funcionamento"`
	Fechamento      *time.Time `json:"fechamento"`
	DataAtendimento *time.Time `json:"data_atendimento"`
	DataSolucao     *time.Time `json:"data_solucao"`

	Ocorrencia string `json:"ocorrencia"`
	Causa      string `json:"causa"`
	Fornecedor string `json:"fornecedor"`

	CustoOS             *float64 `json:"custo_os"`
	CustoMO             *float64 `json:"custo_mo"`
	CustoPeca           *float64 `json:"custo_peca"`
	CustoServicoExterno *float64 `json:"custo_servicoexterno"`

	Responsavel    string `json:"responsavel"`
	Solicitante    string `json:"solicitante"`
	TipoManutencao string `json:"tipomanutencao"`
	Situacao       string `json:"situacao"`
	SituacaoInt    *int   `json:"situacao_int,omitempty"`

	Familia         string `json:"familia,omitempty"`
	Modelo          string `json:"modelo,omitempty"`
	TipoEquipamento string `json:"tipoequipamento,omitempty"`
	Fabricante      string `json:"fabricante,omitempty"`
	NSerie          string `json:"nserie,omitempty"`
}

// Equipment holds the attributes merged into orders by tag.
type Equipment struct {
	Tag             string `json:"tag"`
	Familia         string `json:"familia"`
	Modelo          string `json:"modelo"`
	TipoEquipamento string `json:"tipoequipamento"`
	Fabricante      string `json:"fabricante"`
	NSerie          string `json:"nserie"`
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Acronym   string    `json:"acronym"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyPair is a distinct (display name, legal name) combination found on orders.
type CompanyPair struct {
	Empresa     string `json:"empresa"`
	RazaoSocial string `json:"razaosocial"`
}

type Run struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary"`
}
