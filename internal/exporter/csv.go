package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"shoplens/internal/dataset"
)

// utf8BOM marks the stream as UTF-8 so Excel renders accents correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter streams the joined order table as CSV.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

var orderHeader = []string{
	"order_id", "customer_id", "region", "purchased_at",
	"month", "quarter", "year", "weekday",
	"price", "freight", "item_count", "total_value",
	"payment_type", "avg_installments",
}

// WriteOrders streams one CSV row per joined order into w.
func (c *CSVWriter) WriteOrders(w io.Writer, orders []dataset.Order, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(orderHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, order := range orders {
		record := []string{
			order.OrderID,
			order.CustomerID,
			order.Region,
			order.PurchasedAt.Format("2006-01-02 15:04:05"),
			order.Month.Format("2006-01-02"),
			order.Quarter.Format("2006-01-02"),
			strconv.Itoa(order.Year),
			order.Weekday,
			strconv.FormatFloat(order.Price, 'f', 2, 64),
			strconv.FormatFloat(order.Freight, 'f', 2, 64),
			strconv.Itoa(order.ItemCount),
			strconv.FormatFloat(order.TotalValue, 'f', 2, 64),
			order.PaymentType,
			strconv.FormatFloat(order.AvgInstallments, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	c.logger.Debug("orders exported as csv", slog.Int("rows", len(orders)))
	return nil
}
