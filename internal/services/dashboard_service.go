package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shoplens/internal/analytics"
	"shoplens/internal/dataset"
	"shoplens/internal/infrastructure"
)

// DashboardService computes dashboard snapshots over the in-memory dataset.
// Every snapshot is recomputed from the joined rows; nothing is cached
// between requests.
type DashboardService struct {
	data    *dataset.Dataset
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// Range echoes the resolved request window back to the client, including
// the derived comparison window.
type Range struct {
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Granularity analytics.Granularity `json:"granularity"`
	PrevStart   time.Time             `json:"prev_start"`
	PrevEnd     time.Time             `json:"prev_end"`
}

// Card is one KPI tile: current value, previous-period change and the
// direction the tile should render.
type Card struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Value     float64         `json:"value"`
	Format    string          `json:"format"`
	Change    analytics.Delta `json:"change"`
	Direction string          `json:"direction"`
}

// ChartSeries is one named series of a chart.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a render-ready chart: labels plus one or more aligned series.
type Chart struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Kind   string        `json:"kind"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// Snapshot is the full dashboard payload for one request.
type Snapshot struct {
	Range       Range     `json:"range"`
	Cards       []Card    `json:"cards"`
	Charts      []Chart   `json:"charts"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DatasetInfo describes the loaded dataset for the /api/dataset endpoint.
type DatasetInfo struct {
	Orders      int            `json:"orders"`
	MinPurchase time.Time      `json:"min_purchase"`
	MaxPurchase time.Time      `json:"max_purchase"`
	HasPayments bool           `json:"has_payments"`
	SourceRows  map[string]int `json:"source_rows"`
	LoadedAt    time.Time      `json:"loaded_at"`
}

// Card value formats understood by the frontend.
const (
	formatCurrency = "currency"
	formatCount    = "count"
	formatDecimal  = "decimal"
	formatPercent  = "percent"
)

// NewDashboardService creates a dashboard service over a loaded dataset.
func NewDashboardService(data *dataset.Dataset, metrics *infrastructure.Metrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		data:    data,
		metrics: metrics,
		logger:  logger,
	}
}

// DefaultRange returns the full span of the dataset, used when the request
// carries no explicit dates.
func (s *DashboardService) DefaultRange() (time.Time, time.Time) {
	return s.data.MinPurchase, s.data.MaxPurchase
}

// Orders exposes the joined order table for exports.
func (s *DashboardService) Orders() []dataset.Order {
	return s.data.Orders
}

// Info returns metadata about the loaded dataset.
func (s *DashboardService) Info(ctx context.Context) DatasetInfo {
	return DatasetInfo{
		Orders:      len(s.data.Orders),
		MinPurchase: s.data.MinPurchase,
		MaxPurchase: s.data.MaxPurchase,
		HasPayments: s.data.HasPayments,
		SourceRows:  s.data.SourceRows,
		LoadedAt:    s.data.LoadedAt,
	}
}

// Snapshot computes the dashboard for [start, end] at the given granularity.
// Zero start/end fall back to the dataset's full span.
func (s *DashboardService) Snapshot(ctx context.Context, start, end time.Time, granularity analytics.Granularity) (*Snapshot, error) {
	if len(s.data.Orders) == 0 {
		return nil, ErrEmptyDataset
	}

	if start.IsZero() {
		start = s.data.MinPurchase
	}
	if end.IsZero() {
		end = s.data.MaxPurchase
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if granularity == "" {
		granularity = analytics.GranularityMonth
	}

	started := time.Now()

	current := analytics.Filter(s.data.Orders, start, end)
	previous := analytics.FilterPrevious(s.data.Orders, start, end)

	currentSummary := analytics.Summarize(current)
	previousSummary := analytics.Summarize(previous)

	prevStart, prevEnd := analytics.PreviousRange(start, end)

	snapshot := &Snapshot{
		Range: Range{
			Start:       start,
			End:         end,
			Granularity: granularity,
			PrevStart:   prevStart,
			PrevEnd:     prevEnd,
		},
		Cards:       buildCards(currentSummary, previousSummary),
		Charts:      s.buildCharts(current, granularity),
		GeneratedAt: time.Now(),
	}

	if s.metrics != nil {
		s.metrics.SnapshotsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "dashboard snapshot computed",
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")),
		slog.String("granularity", string(granularity)),
		slog.Int("orders_in_range", currentSummary.TotalOrders),
		slog.Duration("elapsed", time.Since(started)))

	return snapshot, nil
}

func buildCards(current, previous analytics.Summary) []Card {
	return []Card{
		card("total_revenue", "Total Revenue", current.TotalRevenue, previous.TotalRevenue, formatCurrency),
		card("total_orders", "Total Orders", float64(current.TotalOrders), float64(previous.TotalOrders), formatCount),
		card("avg_ticket", "Average Ticket", current.AvgTicket, previous.AvgTicket, formatCurrency),
		card("total_customers", "Customers", float64(current.TotalCustomers), float64(previous.TotalCustomers), formatCount),
		card("avg_items", "Items per Order", current.AvgItems, previous.AvgItems, formatDecimal),
		card("avg_freight", "Average Freight", current.AvgFreight, previous.AvgFreight, formatCurrency),
		card("conversion_rate", "Orders per Customer", current.ConversionRate, previous.ConversionRate, formatPercent),
	}
}

func card(id, title string, current, previous float64, format string) Card {
	change := analytics.Change(current, previous)
	return Card{
		ID:        id,
		Title:     title,
		Value:     current,
		Format:    format,
		Change:    change,
		Direction: direction(change),
	}
}

// direction maps a delta onto the arrow a KPI tile renders. A missing
// baseline renders no arrow rather than a misleading flat one.
func direction(d analytics.Delta) string {
	switch {
	case !d.HasBaseline:
		return "none"
	case d.Percent > 0:
		return "up"
	case d.Percent < 0:
		return "down"
	default:
		return "flat"
	}
}

func (s *DashboardService) buildCharts(subset []dataset.Order, granularity analytics.Granularity) []Chart {
	charts := []Chart{
		revenueChart(analytics.RevenueByPeriod(subset, granularity), granularity),
		countChart("orders_by_region", "Orders by Region", "bar", analytics.OrdersByRegion(subset)),
		countChart("orders_by_weekday", "Orders by Weekday", "bar", analytics.OrdersByWeekday(subset)),
	}
	if s.data.HasPayments {
		charts = append(charts,
			countChart("payment_types", "Payment Types", "pie", analytics.PaymentTypes(subset)))
	}
	return charts
}

func revenueChart(buckets []analytics.PeriodBucket, granularity analytics.Granularity) Chart {
	labels := make([]string, len(buckets))
	revenue := make([]float64, len(buckets))
	orders := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
		revenue[i] = b.Revenue
		orders[i] = float64(b.Orders)
	}
	return Chart{
		ID:     "revenue_by_period",
		Title:  fmt.Sprintf("Revenue by %s", titleForGranularity(granularity)),
		Kind:   "line",
		Labels: labels,
		Series: []ChartSeries{
			{Name: "Revenue", Values: revenue},
			{Name: "Orders", Values: orders},
		},
	}
}

func countChart(id, title, kind string, buckets []analytics.CountBucket) Chart {
	labels := make([]string, len(buckets))
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Key
		values[i] = float64(b.Count)
	}
	return Chart{
		ID:     id,
		Title:  title,
		Kind:   kind,
		Labels: labels,
		Series: []ChartSeries{{Name: "Orders", Values: values}},
	}
}

func titleForGranularity(g analytics.Granularity) string {
	switch g {
	case analytics.GranularityQuarter:
		return "Quarter"
	case analytics.GranularityYear:
		return "Year"
	default:
		return "Month"
	}
}
