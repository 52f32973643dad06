package dataset

import (
	"context"
	"log/slog"
	"time"
)

// itemTotals accumulates the per-order line item aggregation.
type itemTotals struct {
	price   float64
	freight float64
	count   int
}

// paymentTotals accumulates the per-order payment collapse.
type paymentTotals struct {
	value        float64
	firstType    string
	installments int
	count        int
}

// Join merges the source tables into the denormalized per-order table.
// Every join is many-to-one or one-to-one on the order key, so the result
// has exactly one row per distinct order id in the orders table; unmatched
// customers leave the region empty, orders without items carry zero sums.
func Join(ctx context.Context, tables *Tables, logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	regionByCustomer := make(map[string]string, len(tables.Customers))
	for _, c := range tables.Customers {
		regionByCustomer[c.CustomerID] = c.Region
	}

	itemsByOrder := make(map[string]*itemTotals)
	for _, item := range tables.Items {
		totals := itemsByOrder[item.OrderID]
		if totals == nil {
			totals = &itemTotals{}
			itemsByOrder[item.OrderID] = totals
		}
		totals.price += item.Price
		totals.freight += item.Freight
		totals.count++
	}

	paymentsByOrder := make(map[string]*paymentTotals)
	if tables.HasPayments {
		for _, p := range tables.Payments {
			totals := paymentsByOrder[p.OrderID]
			if totals == nil {
				totals = &paymentTotals{firstType: p.Type}
				paymentsByOrder[p.OrderID] = totals
			}
			totals.value += p.Value
			totals.installments += p.Installments
			totals.count++
		}
	}

	orders := make([]Order, 0, len(tables.Orders))
	seen := make(map[string]bool, len(tables.Orders))
	var minTS, maxTS time.Time

	for _, row := range tables.Orders {
		if row.OrderID == "" || seen[row.OrderID] {
			continue
		}
		seen[row.OrderID] = true

		order := Order{
			OrderID:     row.OrderID,
			CustomerID:  row.CustomerID,
			Region:      regionByCustomer[row.CustomerID],
			PurchasedAt: row.PurchasedAt,
			Month:       monthStart(row.PurchasedAt),
			Quarter:     quarterStart(row.PurchasedAt),
			Year:        row.PurchasedAt.Year(),
			Weekday:     weekdayName(row.PurchasedAt),
		}

		if totals := itemsByOrder[row.OrderID]; totals != nil {
			order.Price = totals.price
			order.Freight = totals.freight
			order.ItemCount = totals.count
			order.TotalValue = totals.price + totals.freight
		}

		if totals := paymentsByOrder[row.OrderID]; totals != nil {
			order.PaymentType = totals.firstType
			if totals.count > 0 {
				order.AvgInstallments = float64(totals.installments) / float64(totals.count)
			}
		}

		if minTS.IsZero() || row.PurchasedAt.Before(minTS) {
			minTS = row.PurchasedAt
		}
		if maxTS.IsZero() || row.PurchasedAt.After(maxTS) {
			maxTS = row.PurchasedAt
		}

		orders = append(orders, order)
	}

	ds := &Dataset{
		Orders:      orders,
		MinPurchase: minTS,
		MaxPurchase: maxTS,
		HasPayments: tables.HasPayments,
		SourceRows: map[string]int{
			"orders":    len(tables.Orders),
			"customers": len(tables.Customers),
			"items":     len(tables.Items),
			"products":  len(tables.Products),
			"sellers":   len(tables.Sellers),
			"payments":  len(tables.Payments),
		},
		LoadedAt: time.Now(),
	}

	logger.InfoContext(ctx, "joined order table built",
		slog.Int("orders", len(orders)),
		slog.String("min_purchase", formatOrEmpty(minTS)),
		slog.String("max_purchase", formatOrEmpty(maxTS)),
		slog.String("duration", time.Since(start).String()))

	return ds
}

// monthStart truncates a timestamp to the first day of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// quarterStart truncates a timestamp to the first day of its quarter.
func quarterStart(t time.Time) time.Time {
	quarterMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, t.Location())
}

// weekdayName returns the Monday-first weekday name for a timestamp.
func weekdayName(t time.Time) string {
	// time.Weekday is Sunday-based; shift so Monday is index 0.
	idx := (int(t.Weekday()) + 6) % 7
	return WeekdayNames[idx]
}

func formatOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
