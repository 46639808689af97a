package reliability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/healthcare-bi/backend/internal/models"
)

var openStatuses = map[string]struct{}{
	"Aberto":       {},
	"Em Andamento": {},
	"Pendente":     {},
}

// Weekdays lists heatmap rows, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type KPIs struct {
	TotalOrders        int      `json:"total_orders"`
	OpenOrders         int      `json:"open_orders"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours"`
	TotalCost          float64  `json:"total_cost"`
}

func ComputeKPIs(orders []models.MaintenanceOrder) KPIs {
	k := KPIs{TotalOrders: len(orders)}
	var durations []float64
	for _, o := range orders {
		if _, ok := openStatuses[o.Situacao]; ok {
			k.OpenOrders++
		}
		if hasBothTimestamps(o) {
			durations = append(durations, o.Fechamento.Sub(*o.Abertura).Hours())
		}
		k.TotalCost += orderCost(o)
	}
	if len(durations) > 0 {
		avg := stat.Mean(durations, nil)
		k.AvgResolutionHours = &avg
	}
	return k
}

type Heatmap struct {
	Weekdays  []string   `json:"weekdays"`
	Counts    [7][24]int `json:"counts"`
	ByWeekday [7]int     `json:"by_weekday"`
	ByHour    [24]int    `json:"by_hour"`
	Total     int        `json:"total"`
	Insights  *Insights  `json:"insights"`
}

type Insights struct {
	BusiestDay         string  `json:"busiest_day"`
	BusiestDayCount    int     `json:"busiest_day_count"`
	QuietestDay        string  `json:"quietest_day"`
	QuietestDayCount   int     `json:"quietest_day_count"`
	PeakHour           int     `json:"peak_hour"`
	PeakHourCount      int     `json:"peak_hour_count"`
	QuietBusinessHour  *int    `json:"quiet_business_hour"`
	QuietBusinessCount int     `json:"quiet_business_hour_count"`
	WeekendPct         float64 `json:"weekend_pct"`
	WeekendCount       int     `json:"weekend_count"`
	BusinessHoursPct   float64 `json:"business_hours_pct"`
	BusinessHoursCount int     `json:"business_hours_count"`
}

// OpeningHeatmap counts order openings by weekday and hour. Insights are nil
// when no order has an opening time.
func OpeningHeatmap(orders []models.MaintenanceOrder) Heatmap {
	h := Heatmap{Weekdays: Weekdays}
	for _, o := range orders {
		if o.Abertura == nil {
			continue
		}
		day := mondayIndex(o.Abertura.Weekday())
		hour := o.Abertura.Hour()
		h.Counts[day][hour]++
		h.ByWeekday[day]++
		h.ByHour[hour]++
		h.Total++
	}
	if h.Total > 0 {
		h.Insights = insightsFor(h)
	}
	return h
}

func insightsFor(h Heatmap) *Insights {
	in := &Insights{}

	busiest, quietest := 0, 0
	for d := 1; d < 7; d++ {
		if h.ByWeekday[d] > h.ByWeekday[busiest] {
			busiest = d
		}
		if h.ByWeekday[d] < h.ByWeekday[quietest] {
			quietest = d
		}
	}
	in.BusiestDay, in.BusiestDayCount = Weekdays[busiest], h.ByWeekday[busiest]
	in.QuietestDay, in.QuietestDayCount = Weekdays[quietest], h.ByWeekday[quietest]

	peak := 0
	for hr := 1; hr < 24; hr++ {
		if h.ByHour[hr] > h.ByHour[peak] {
			peak = hr
		}
	}
	in.PeakHour, in.PeakHourCount = peak, h.ByHour[peak]

	// Only hours that saw at least one opening compete for the quietest slot.
	quiet := -1
	for hr := 6; hr <= 22; hr++ {
		if h.ByHour[hr] == 0 {
			continue
		}
		if quiet == -1 || h.ByHour[hr] < h.ByHour[quiet] {
			quiet = hr
		}
	}
	if quiet >= 0 {
		in.QuietBusinessHour, in.QuietBusinessCount = &quiet, h.ByHour[quiet]
	}

	in.WeekendCount = h.ByWeekday[5] + h.ByWeekday[6]
	in.WeekendPct = float64(in.WeekendCount) / float64(h.Total) * 100
	for hr := 6; hr <= 18; hr++ {
		in.BusinessHoursCount += h.ByHour[hr]
	}
	in.BusinessHoursPct = float64(in.BusinessHoursCount) / float64(h.Total) * 100
	return in
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthlyTrend counts orders per opening month, oldest first.
func MonthlyTrend(orders []models.MaintenanceOrder) []Bucket {
	counts := map[string]int{}
	for _, o := range orders {
		if o.Abertura == nil {
			continue
		}
		counts[o.Abertura.Format("2006-01")]++
	}
	out := make([]Bucket, 0, len(counts))
	for month, n := range counts {
		out = append(out, Bucket{Label: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

var breakdownFields = map[string]func(models.MaintenanceOrder) string{
	"situacao":       func(o models.MaintenanceOrder) string { return o.Situacao },
	"equipamento":    func(o models.MaintenanceOrder) string { return o.Equipamento },
	"tipomanutencao": func(o models.MaintenanceOrder) string { return o.TipoManutencao },
	"setor":          func(o models.MaintenanceOrder) string { return o.Setor },
	"causa":          func(o models.MaintenanceOrder) string { return o.Causa },
	"empresa":        func(o models.MaintenanceOrder) string { return o.Empresa },
}

// CountBy returns value counts of a field, most frequent first. Empty values
// are skipped; limit <= 0 returns every value.
func CountBy(orders []models.MaintenanceOrder, field string, limit int) ([]Bucket, error) {
	get, ok := breakdownFields[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return nil, fmt.Errorf("unsupported breakdown field %q", field)
	}
	counts := map[string]int{}
	for _, o := range orders {
		if v := strings.TrimSpace(get(o)); v != "" {
			counts[v]++
		}
	}
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Label < out[j].Label
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type CostBreakdown struct {
	CustoOS             float64 `json:"custo_os"`
	CustoMO             float64 `json:"custo_mo"`
	CustoPeca           float64 `json:"custo_peca"`
	CustoServicoExterno float64 `json:"custo_servicoexterno"`
}

func Costs(orders []models.MaintenanceOrder) CostBreakdown {
	var c CostBreakdown
	for _, o := range orders {
		c.CustoOS += deref(o.CustoOS)
		c.CustoMO += deref(o.CustoMO)
		c.CustoPeca += deref(o.CustoPeca)
		c.CustoServicoExterno += deref(o.CustoServicoExterno)
	}
	return c
}

func orderCost(o models.MaintenanceOrder) float64 {
	return deref(o.CustoOS) + deref(o.CustoMO) + deref(o.CustoPeca) + deref(o.CustoServicoExterno)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
