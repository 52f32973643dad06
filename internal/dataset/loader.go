package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source file names expected inside the data directory.
const (
	OrdersFile    = "orders.csv"
	CustomersFile = "customers.csv"
	ItemsFile     = "order_items.csv"
	ProductsFile  = "products.csv"
	SellersFile   = "sellers.csv"
	PaymentsFile  = "order_payments.csv"
)

// Purchase timestamp layouts accepted on the orders file.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Loader reads the fixed-schema CSV source files into typed tables.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:    dir,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads all source tables. The five required files load concurrently;
// a missing required file fails the whole load with an error naming the
// file. The payments file is optional.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	start := time.Now()
	tables := &Tables{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := l.loadOrders(ctx)
		if err != nil {
			return err
		}
		tables.Orders = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadCustomers(ctx)
		if err != nil {
			return err
		}
		tables.Customers = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadItems(ctx)
		if err != nil {
			return err
		}
		tables.Items = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadProducts(ctx)
		if err != nil {
			return err
		}
		tables.Products = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.loadSellers(ctx)
		if err != nil {
			return err
		}
		tables.Sellers = rows
		return nil
	})
	g.Go(func() error {
		rows, ok, err := l.loadPayments(ctx)
		if err != nil {
			return err
		}
		tables.Payments = rows
		tables.HasPayments = ok
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "source tables loaded",
		slog.Int("orders", len(tables.Orders)),
		slog.Int("customers", len(tables.Customers)),
		slog.Int("items", len(tables.Items)),
		slog.Int("products", len(tables.Products)),
		slog.Int("sellers", len(tables.Sellers)),
		slog.Int("payments", len(tables.Payments)),
		slog.Bool("has_payments", tables.HasPayments),
		slog.String("duration", time.Since(start).String()))

	return tables, nil
}

func (l *Loader) loadOrders(ctx context.Context) ([]OrderRow, error) {
	var rows []OrderRow
	err := l.readTable(ctx, OrdersFile, []string{"order_id", "customer_id", "order_purchase_timestamp"}, func(row *tableRow) {
		ts, ok := parseTimestamp(row.getString("order_purchase_timestamp"))
		if !ok {
			// An order without a parsable purchase timestamp cannot be
			// placed on the calendar; skip it rather than invent a date.
			l.logger.WarnContext(ctx, "skipping order with invalid purchase timestamp",
				slog.String("order_id", row.getString("order_id")))
			return
		}
		rows = append(rows, OrderRow{
			OrderID:     row.getString("order_id"),
			CustomerID:  row.getString("customer_id"),
			PurchasedAt: ts,
		})
	})
	return rows, err
}

func (l *Loader) loadCustomers(ctx context.Context) ([]CustomerRow, error) {
	var rows []CustomerRow
	err := l.readTable(ctx, CustomersFile, []string{"customer_id", "customer_state"}, func(row *tableRow) {
		rows = append(rows, CustomerRow{
			CustomerID: row.getString("customer_id"),
			City:       row.getString("customer_city"),
			Region:     row.getString("customer_state"),
		})
	})
	return rows, err
}

func (l *Loader) loadItems(ctx context.Context) ([]ItemRow, error) {
	var rows []ItemRow
	err := l.readTable(ctx, ItemsFile, []string{"order_id", "price"}, func(row *tableRow) {
		rows = append(rows, ItemRow{
			OrderID:   row.getString("order_id"),
			ProductID: row.getString("product_id"),
			SellerID:  row.getString("seller_id"),
			Price:     row.getFloat("price"),
			Freight:   row.getFloat("freight_value"),
		})
	})
	return rows, err
}

func (l *Loader) loadProducts(ctx context.Context) ([]ProductRow, error) {
	var rows []ProductRow
	err := l.readTable(ctx, ProductsFile, []string{"product_id"}, func(row *tableRow) {
		rows = append(rows, ProductRow{
			ProductID: row.getString("product_id"),
			Category:  row.getString("product_category_name"),
		})
	})
	return rows, err
}

func (l *Loader) loadSellers(ctx context.Context) ([]SellerRow, error) {
	var rows []SellerRow
	err := l.readTable(ctx, SellersFile, []string{"seller_id"}, func(row *tableRow) {
		rows = append(rows, SellerRow{
			SellerID: row.getString("seller_id"),
			Region:   row.getString("seller_state"),
		})
	})
	return rows, err
}

// loadPayments reads the optional payments table. A missing file is not an
// error; the joined table simply carries no payment fields.
func (l *Loader) loadPayments(ctx context.Context) ([]PaymentRow, bool, error) {
	path := filepath.Join(l.dir, PaymentsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.InfoContext(ctx, "payments file not present, skipping",
			slog.String("file", PaymentsFile))
		return nil, false, nil
	}

	var rows []PaymentRow
	err := l.readTable(ctx, PaymentsFile, []string{"order_id", "payment_value"}, func(row *tableRow) {
		rows = append(rows, PaymentRow{
			OrderID:      row.getString("order_id"),
			Type:         row.getString("payment_type"),
			Value:        row.getFloat("payment_value"),
			Installments: int(row.getInt("payment_installments")),
		})
	})
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// tableRow gives safe, defaulting access to one CSV record via the
// header-derived column map.
type tableRow struct {
	columns map[string]int
	record  []string
}

// getString returns the trimmed cell value, or "" when the column is absent.
func (r *tableRow) getString(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// getFloat returns the cell parsed as float64, zero when missing or invalid.
func (r *tableRow) getFloat(column string) float64 {
	val, _ := strconv.ParseFloat(r.getString(column), 64)
	return val
}

// getInt returns the cell parsed as int64, zero when missing or invalid.
func (r *tableRow) getInt(column string) int64 {
	val, _ := strconv.ParseInt(r.getString(column), 10, 64)
	return val
}

// readTable opens one CSV file, maps columns by header name and invokes fn
// per data row. Column positions are never assumed; files may reorder or
// add columns freely as long as the required headers are present.
func (l *Loader) readTable(ctx context.Context, name string, required []string, fn func(*tableRow)) error {
	path := filepath.Join(l.dir, name)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("required data file %s not found in %s", name, l.dir)
		}
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return fmt.Errorf("%s: missing required column %q", name, col)
		}
	}

	row := &tableRow{columns: columns}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		row.record = record
		fn(row)
	}

	return nil
}

// parseTimestamp tries the accepted purchase timestamp layouts in order.
func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
