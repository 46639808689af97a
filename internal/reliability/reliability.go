package reliability

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/utils"
)

// KeyFunc picks the grouping key of an order. An empty key excludes the order.
type KeyFunc func(models.MaintenanceOrder) string

func ByEquipment(o models.MaintenanceOrder) string { return strings.TrimSpace(o.Equipamento) }
func ByTag(o models.MaintenanceOrder) string       { return strings.TrimSpace(o.Tag) }
func BySector(o models.MaintenanceOrder) string    { return strings.TrimSpace(o.Setor) }

// KeyFuncFor maps a group_by name to its KeyFunc. Unknown names fall back to
// equipment.
func KeyFuncFor(name string) KeyFunc {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tag":
		return ByTag
	case "setor", "sector":
		return BySector
	default:
		return ByEquipment
	}
}

type MTBFRecord struct {
	Key          string  `json:"equipamento"`
	MTBFHours    float64 `json:"mtbf_hours"`
	MTBFDays     float64 `json:"mtbf_days"`
	FailureCount int     `json:"failure_count"`
}

type MTTRRecord struct {
	Key         string   `json:"equipamento"`
	MTTRHours   float64  `json:"mttr_hours"`
	MTTRDays    float64  `json:"mttr_days"`
	RepairCount int      `json:"repair_count"`
	MTTRStd     *float64 `json:"mttr_std"`
	TotalOrders int      `json:"total_orders"`
}

type AvailabilityRecord struct {
	Key                string  `json:"equipamento"`
	TotalDowntimeHours float64 `json:"total_downtime_hours"`
	AvailabilityPct    float64 `json:"availability_pct"`
	FailureCount       int     `json:"failure_count"`
}

// CalculateMTBF returns one row per key with at least two completed orders.
// Orders are completed when their closing time is set.
func CalculateMTBF(orders []models.MaintenanceOrder, key KeyFunc) []MTBFRecord {
	if key == nil {
		key = ByEquipment
	}
	groups := groupBy(orders, key, func(o models.MaintenanceOrder) bool {
		return o.Fechamento != nil
	})

	out := make([]MTBFRecord, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		eq := groups[k]
		if len(eq) < 2 {
			continue
		}
		opened := openingTimes(eq)
		if len(opened) < 2 {
			continue
		}
		diffs := make([]float64, 0, len(opened)-1)
		for i := 1; i < len(opened); i++ {
			diffs = append(diffs, opened[i].Sub(opened[i-1]).Hours())
		}
		mean := stat.Mean(diffs, nil)
		if math.IsNaN(mean) {
			continue
		}
		out = append(out, MTBFRecord{
			Key:          k,
			MTBFHours:    mean,
			MTBFDays:     mean / 24,
			FailureCount: len(eq),
		})
	}
	return out
}

// CalculateMTTR returns one row per key with at least one order carrying
// both timestamps. Derived numbers are rounded to 2 decimal places.
func CalculateMTTR(orders []models.MaintenanceOrder, key KeyFunc) []MTTRRecord {
	if key == nil {
		key = ByEquipment
	}
	groups := groupBy(orders, key, hasBothTimestamps)

	out := make([]MTTRRecord, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		eq := groups[k]
		durations := repairHours(eq)
		mean := utils.Round(stat.Mean(durations, nil), 2)
		rec := MTTRRecord{
			Key:         k,
			MTTRHours:   mean,
			MTTRDays:    utils.Round(mean/24, 2),
			RepairCount: len(durations),
			TotalOrders: countWithOS(eq),
		}
		if len(durations) > 1 {
			std := utils.Round(stat.StdDev(durations, nil), 2)
			rec.MTTRStd = &std
		}
		out = append(out, rec)
	}
	return out
}

// CalculateAvailability returns one row per key whose observation window is
// positive. The percentage is clamped to [0, 100].
func CalculateAvailability(orders []models.MaintenanceOrder, key KeyFunc) []AvailabilityRecord {
	if key == nil {
		key = ByEquipment
	}
	groups := groupBy(orders, key, hasBothTimestamps)

	out := make([]AvailabilityRecord, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		eq := groups[k]
		var downtime float64
		for _, h := range repairHours(eq) {
			downtime += h
		}

		first, last := *eq[0].Abertura, *eq[0].Fechamento
		for _, o := range eq[1:] {
			if o.Abertura.Before(first) {
				first = *o.Abertura
			}
			if o.Fechamento.After(last) {
				last = *o.Fechamento
			}
		}
		window := last.Sub(first).Hours()
		if window <= 0 {
			continue
		}

		out = append(out, AvailabilityRecord{
			Key:                k,
			TotalDowntimeHours: downtime,
			AvailabilityPct:    clamp((window-downtime)/window*100, 0, 100),
			FailureCount:       len(eq),
		})
	}
	return out
}

func hasBothTimestamps(o models.MaintenanceOrder) bool {
	return o.Abertura != nil && o.Fechamento != nil
}

func groupBy(orders []models.MaintenanceOrder, key KeyFunc, keep func(models.MaintenanceOrder) bool) map[string][]models.MaintenanceOrder {
	groups := map[string][]models.MaintenanceOrder{}
	for _, o := range orders {
		if !keep(o) {
			continue
		}
		k := key(o)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], o)
	}
	return groups
}

func sortedKeys(groups map[string][]models.MaintenanceOrder) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// openingTimes returns the non-null opening times in ascending order.
func openingTimes(orders []models.MaintenanceOrder) []time.Time {
	out := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		if o.Abertura != nil {
			out = append(out, *o.Abertura)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func repairHours(orders []models.MaintenanceOrder) []float64 {
	out := make([]float64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Fechamento.Sub(*o.Abertura).Hours())
	}
	return out
}

func countWithOS(orders []models.MaintenanceOrder) int {
	n := 0
	for _, o := range orders {
		if o.OS != "" {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
