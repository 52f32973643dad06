package dataset

import "time"

// OrderRow is one row of the orders source table.
type OrderRow struct {
	OrderID     string
	CustomerID  string
	PurchasedAt time.Time
}

// CustomerRow is one row of the customers source table.
type CustomerRow struct {
	CustomerID string
	City       string
	Region     string
}

// ItemRow is one order line item. Price and Freight default to zero when
// the source value is missing or not numeric.
type ItemRow struct {
	OrderID   string
	ProductID string
	SellerID  string
	Price     float64
	Freight   float64
}

// ProductRow is one row of the products source table.
type ProductRow struct {
	ProductID string
	Category  string
}

// SellerRow is one row of the sellers source table.
type SellerRow struct {
	SellerID string
	Region   string
}

// PaymentRow is one payment entry for an order. An order may have several.
type PaymentRow struct {
	OrderID      string
	Type         string
	Value        float64
	Installments int
}

// Tables holds the parsed source tables before joining.
type Tables struct {
	Orders      []OrderRow
	Customers   []CustomerRow
	Items       []ItemRow
	Products    []ProductRow
	Sellers     []SellerRow
	Payments    []PaymentRow
	HasPayments bool
}

// Order is one joined, denormalized order record. Exactly one row exists
// per distinct order id in the orders source table.
type Order struct {
	OrderID         string    `json:"order_id"`
	CustomerID      string    `json:"customer_id"`
	Region          string    `json:"region"`
	PurchasedAt     time.Time `json:"purchased_at"`
	Month           time.Time `json:"month"`
	Quarter         time.Time `json:"quarter"`
	Year            int       `json:"year"`
	Weekday         string    `json:"weekday"`
	Price           float64   `json:"price"`
	Freight         float64   `json:"freight"`
	ItemCount       int       `json:"item_count"`
	TotalValue      float64   `json:"total_value"`
	PaymentType     string    `json:"payment_type"`
	AvgInstallments float64   `json:"avg_installments"`
}

// Dataset is the immutable joined table plus source metadata. It is built
// once at startup and shared read-only by all requests.
type Dataset struct {
	Orders      []Order
	MinPurchase time.Time
	MaxPurchase time.Time
	HasPayments bool
	SourceRows  map[string]int
	LoadedAt    time.Time
}

// WeekdayNames is the fixed Monday-first weekday ordering used by
// calendar derivation and the weekday summary.
var WeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
