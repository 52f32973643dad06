package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestJoin_CollapsesLineItems(t *testing.T) {
	tables := &Tables{
		Orders: []OrderRow{
			{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2018, 1, 5)},
		},
		Customers: []CustomerRow{
			{CustomerID: "c1", Region: "SP"},
		},
		Items: []ItemRow{
			{OrderID: "o1", ProductID: "p1", Price: 100, Freight: 10},
			{OrderID: "o1", ProductID: "p2", Price: 40, Freight: 5},
		},
	}

	ds := Join(context.Background(), tables, nil)

	require.Len(t, ds.Orders, 1)
	order := ds.Orders[0]
	assert.Equal(t, 140.0, order.Price)
	assert.Equal(t, 15.0, order.Freight)
	assert.Equal(t, 2, order.ItemCount)
	assert.Equal(t, 155.0, order.TotalValue)
	assert.Equal(t, "SP", order.Region)
}

func TestJoin_OneRowPerOrder(t *testing.T) {
	tables := &Tables{
		Orders: []OrderRow{
			{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2018, 1, 5)},
			{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2018, 1, 5)},
			{OrderID: "o2", CustomerID: "c2", PurchasedAt: ts(2018, 2, 10)},
			{OrderID: "", CustomerID: "c3", PurchasedAt: ts(2018, 2, 11)},
		},
	}

	ds := Join(context.Background(), tables, nil)

	assert.Len(t, ds.Orders, 2)
}

func TestJoin_UnmatchedCustomerLeavesRegionEmpty(t *testing.T) {
	tables := &Tables{
		Orders: []OrderRow{
			{OrderID: "o1", CustomerID: "ghost", PurchasedAt: ts(2018, 1, 5)},
		},
		Customers: []CustomerRow{
			{CustomerID: "c1", Region: "SP"},
		},
	}

	ds := Join(context.Background(), tables, nil)

	require.Len(t, ds.Orders, 1)
	assert.Empty(t, ds.Orders[0].Region)
}

func TestJoin_PaymentCollapse(t *testing.T) {
	tables := &Tables{
		Orders: []OrderRow{
			{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2018, 1, 5)},
		},
		Payments: []PaymentRow{
			{OrderID: "o1", Type: "credit_card", Value: 60, Installments: 3},
			{OrderID: "o1", Type: "voucher", Value: 40, Installments: 1},
		},
		HasPayments: true,
	}

	ds := Join(context.Background(), tables, nil)

	require.Len(t, ds.Orders, 1)
	order := ds.Orders[0]
	// First-seen type wins, installments are averaged.
	assert.Equal(t, "credit_card", order.PaymentType)
	assert.Equal(t, 2.0, order.AvgInstallments)
}

func TestJoin_CalendarFields(t *testing.T) {
	tests := []struct {
		name        string
		purchasedAt time.Time
		wantMonth   time.Time
		wantQuarter time.Time
		wantYear    int
		wantWeekday string
	}{
		{
			name:        "mid Q1",
			purchasedAt: time.Date(2018, 2, 14, 8, 0, 0, 0, time.UTC), // a Wednesday
			wantMonth:   time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC),
			wantQuarter: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			wantYear:    2018,
			wantWeekday: "Wednesday",
		},
		{
			name:        "Q4 sunday",
			purchasedAt: time.Date(2017, 12, 31, 23, 59, 0, 0, time.UTC), // a Sunday
			wantMonth:   time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC),
			wantQuarter: time.Date(2017, 10, 1, 0, 0, 0, 0, time.UTC),
			wantYear:    2017,
			wantWeekday: "Sunday",
		},
		{
			name:        "Q3 start monday",
			purchasedAt: time.Date(2018, 7, 2, 0, 0, 0, 0, time.UTC), // a Monday
			wantMonth:   time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC),
			wantQuarter: time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC),
			wantYear:    2018,
			wantWeekday: "Monday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := &Tables{
				Orders: []OrderRow{{OrderID: "o1", CustomerID: "c1", PurchasedAt: tt.purchasedAt}},
			}

			ds := Join(context.Background(), tables, nil)

			require.Len(t, ds.Orders, 1)
			order := ds.Orders[0]
			assert.Equal(t, tt.wantMonth, order.Month)
			assert.Equal(t, tt.wantQuarter, order.Quarter)
			assert.Equal(t, tt.wantYear, order.Year)
			assert.Equal(t, tt.wantWeekday, order.Weekday)
		})
	}
}

func TestJoin_MinMaxPurchase(t *testing.T) {
	tables := &Tables{
		Orders: []OrderRow{
			{OrderID: "o2", CustomerID: "c2", PurchasedAt: ts(2018, 6, 1)},
			{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2017, 3, 15)},
			{OrderID: "o3", CustomerID: "c3", PurchasedAt: ts(2018, 9, 30)},
		},
	}

	ds := Join(context.Background(), tables, nil)

	assert.Equal(t, ts(2017, 3, 15), ds.MinPurchase)
	assert.Equal(t, ts(2018, 9, 30), ds.MaxPurchase)
}

func TestJoin_SourceRowCounts(t *testing.T) {
	tables := &Tables{
		Orders:    []OrderRow{{OrderID: "o1", CustomerID: "c1", PurchasedAt: ts(2018, 1, 1)}},
		Customers: []CustomerRow{{CustomerID: "c1", Region: "SP"}},
		Items:     []ItemRow{{OrderID: "o1", Price: 10}},
		Products:  []ProductRow{{ProductID: "p1"}},
		Sellers:   []SellerRow{{SellerID: "s1"}},
	}

	ds := Join(context.Background(), tables, nil)

	assert.Equal(t, 1, ds.SourceRows["orders"])
	assert.Equal(t, 1, ds.SourceRows["customers"])
	assert.Equal(t, 1, ds.SourceRows["items"])
	assert.Equal(t, 1, ds.SourceRows["products"])
	assert.Equal(t, 1, ds.SourceRows["sellers"])
	assert.Equal(t, 0, ds.SourceRows["payments"])
}

func TestWeekdayName(t *testing.T) {
	// 2018-01-01 was a Monday; walk the whole week.
	for i, want := range WeekdayNames {
		day := time.Date(2018, 1, 1+i, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, weekdayName(day))
	}
}
