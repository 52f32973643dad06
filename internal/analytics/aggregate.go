package analytics

import (
	"fmt"
	"sort"
	"time"

	"shoplens/internal/dataset"
)

// Granularity selects which precomputed calendar bucket time-series
// aggregates group by.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// ParseGranularity validates a granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityMonth, GranularityQuarter, GranularityYear:
		return Granularity(s), nil
	case "":
		return GranularityMonth, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// Limits applied to grouped summaries.
const (
	maxRegionRows      = 10
	maxPaymentTypeRows = 6
)

// Summary holds the scalar KPIs computed over one row subset.
type Summary struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalOrders    int     `json:"total_orders"`
	AvgTicket      float64 `json:"avg_ticket"`
	TotalCustomers int     `json:"total_customers"`
	AvgItems       float64 `json:"avg_items"`
	AvgFreight     float64 `json:"avg_freight"`
	ConversionRate float64 `json:"conversion_rate"`
}

// PeriodBucket is one time-series point of the revenue-by-period summary.
type PeriodBucket struct {
	Period  time.Time `json:"period"`
	Label   string    `json:"label"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
}

// CountBucket is one row of a categorical count summary.
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Delta is a period-over-period change. HasBaseline is false when the
// previous period had no rows or a zero value, which is distinct from a
// true 0% change.
type Delta struct {
	Percent     float64 `json:"percent"`
	HasBaseline bool    `json:"has_baseline"`
}

// Change computes the percentage change from previous to current.
func Change(current, previous float64) Delta {
	if previous <= 0 {
		return Delta{}
	}
	return Delta{
		Percent:     (current - previous) / previous * 100,
		HasBaseline: true,
	}
}

// Summarize computes the scalar KPIs over a subset. Every ratio guards its
// denominator; an empty subset yields all zeros.
func Summarize(subset []dataset.Order) Summary {
	var s Summary

	customers := make(map[string]bool)
	var itemSum, freightSum float64

	for _, order := range subset {
		s.TotalRevenue += order.Price
		s.TotalOrders++
		customers[order.CustomerID] = true
		itemSum += float64(order.ItemCount)
		freightSum += order.Freight
	}

	s.TotalCustomers = len(customers)

	if s.TotalOrders > 0 {
		s.AvgTicket = s.TotalRevenue / float64(s.TotalOrders)
		s.AvgItems = itemSum / float64(s.TotalOrders)
		s.AvgFreight = freightSum / float64(s.TotalOrders)
	}
	if s.TotalCustomers > 0 {
		s.ConversionRate = float64(s.TotalOrders) / float64(s.TotalCustomers) * 100
	}

	return s
}

// RevenueByPeriod groups revenue and order counts by the calendar bucket
// selected by the granularity, sorted chronologically.
func RevenueByPeriod(subset []dataset.Order, granularity Granularity) []PeriodBucket {
	type totals struct {
		revenue float64
		orders  int
	}

	byPeriod := make(map[time.Time]*totals)
	for _, order := range subset {
		period := periodKey(order, granularity)
		t := byPeriod[period]
		if t == nil {
			t = &totals{}
			byPeriod[period] = t
		}
		t.revenue += order.Price
		t.orders++
	}

	buckets := make([]PeriodBucket, 0, len(byPeriod))
	for period, t := range byPeriod {
		buckets = append(buckets, PeriodBucket{
			Period:  period,
			Label:   periodLabel(period, granularity),
			Revenue: t.revenue,
			Orders:  t.orders,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period.Before(buckets[j].Period)
	})

	return buckets
}

// OrdersByRegion counts orders per customer region, keeps the 10 largest
// and returns them sorted ascending by count. Orders whose customer had
// no region are left out, matching the join's dropped-key semantics.
func OrdersByRegion(subset []dataset.Order) []CountBucket {
	counts := make(map[string]int)
	for _, order := range subset {
		if order.Region == "" {
			continue
		}
		counts[order.Region]++
	}

	buckets := bucketize(counts)

	// Largest first to find the top 10.
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > maxRegionRows {
		buckets = buckets[:maxRegionRows]
	}

	// Ascending for display.
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count < buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})

	return buckets
}

// OrdersByWeekday counts orders per weekday. The result always has exactly
// 7 rows in Monday-first order; absent weekdays report zero.
func OrdersByWeekday(subset []dataset.Order) []CountBucket {
	counts := make(map[string]int, 7)
	for _, order := range subset {
		counts[order.Weekday]++
	}

	buckets := make([]CountBucket, 0, 7)
	for _, name := range dataset.WeekdayNames {
		buckets = append(buckets, CountBucket{Key: name, Count: counts[name]})
	}

	return buckets
}

// PaymentTypes counts orders per dominant payment type, top 6 by count.
func PaymentTypes(subset []dataset.Order) []CountBucket {
	counts := make(map[string]int)
	for _, order := range subset {
		if order.PaymentType == "" {
			continue
		}
		counts[order.PaymentType]++
	}

	buckets := bucketize(counts)

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > maxPaymentTypeRows {
		buckets = buckets[:maxPaymentTypeRows]
	}

	return buckets
}

func bucketize(counts map[string]int) []CountBucket {
	buckets := make([]CountBucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, CountBucket{Key: key, Count: count})
	}
	return buckets
}

func periodKey(order dataset.Order, granularity Granularity) time.Time {
	switch granularity {
	case GranularityQuarter:
		return order.Quarter
	case GranularityYear:
		return time.Date(order.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return order.Month
	}
}

func periodLabel(period time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityQuarter:
		quarter := (int(period.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", period.Year(), quarter)
	case GranularityYear:
		return fmt.Sprintf("%d", period.Year())
	default:
		return period.Format("2006-01")
	}
}
