// Package reliability derives equipment reliability tables and dashboard
// aggregates from maintenance orders.
//
// reliability.go holds the three per-equipment computations:
//
//	MTBF         mean interval between successive order openings
//	MTTR         mean opening-to-closing duration
//	Availability share of the observed window not spent under repair
//
// dashboard.go holds the presentation aggregates (KPIs, the weekday x hour
// opening heatmap, monthly trend and value counts). filter.go holds the
// dashboard filter set shared with the store.
//
// Every function is pure and total: empty or fully-null input yields an empty
// result, never an error. Availability assumes 24/7 operation outside recorded
// downtime; there is no operating calendar.
package reliability
