package reliability

import (
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

// Filter is the dashboard filter set. Zero values mean "all". From and To
// compare against the opening date and are inclusive of the whole To day.
type Filter struct {
	From           *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To             *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Empresa        string     `form:"empresa"`
	CompanyID      string     `form:"company_id"`
	Equipamento    string     `form:"equipamento"`
	Setor          string     `form:"setor"`
	TipoManutencao string     `form:"tipomanutencao"`
	Situacao       string     `form:"situacao"`
}

// ToExclusive returns the first instant after the To day.
func (f Filter) ToExclusive() *time.Time {
	if f.To == nil {
		return nil
	}
	y, m, d := f.To.Date()
	next := time.Date(y, m, d, 0, 0, 0, 0, f.To.Location()).AddDate(0, 0, 1)
	return &next
}

func (f Filter) Match(o models.MaintenanceOrder) bool {
	if f.From != nil || f.To != nil {
		if o.Abertura == nil {
			return false
		}
		if f.From != nil && o.Abertura.Before(*f.From) {
			return false
		}
		if end := f.ToExclusive(); end != nil && !o.Abertura.Before(*end) {
			return false
		}
	}
	if f.Empresa != "" && o.Empresa != f.Empresa {
		return false
	}
	if f.CompanyID != "" && (o.CompanyID == nil || *o.CompanyID != f.CompanyID) {
		return false
	}
	if f.Equipamento != "" && o.Equipamento != f.Equipamento {
		return false
	}
	if f.Setor != "" && o.Setor != f.Setor {
		return false
	}
	if f.TipoManutencao != "" && o.TipoManutencao != f.TipoManutencao {
		return false
	}
	if f.Situacao != "" && o.Situacao != f.Situacao {
		return false
	}
	return true
}

func (f Filter) Apply(orders []models.MaintenanceOrder) []models.MaintenanceOrder {
	out := make([]models.MaintenanceOrder, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}
