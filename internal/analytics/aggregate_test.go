package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/dataset"
)

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		input   string
		want    Granularity
		wantErr bool
	}{
		{input: "month", want: GranularityMonth},
		{input: "quarter", want: GranularityQuarter},
		{input: "year", want: GranularityYear},
		{input: "", want: GranularityMonth},
		{input: "week", wantErr: true},
		{input: "Month", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("input=%q", tt.input), func(t *testing.T) {
			got, err := ParseGranularity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// sampleOrders mirrors a tiny two-order dataset: o1 on Jan 5 worth 100,
// o2 on Feb 10 worth 50, distinct customers.
func sampleOrders() []dataset.Order {
	return []dataset.Order{
		{
			OrderID:     "o1",
			CustomerID:  "c1",
			Region:      "SP",
			PurchasedAt: day(2018, 1, 5),
			Month:       day(2018, 1, 1),
			Quarter:     day(2018, 1, 1),
			Year:        2018,
			Weekday:     "Friday",
			Price:       100,
			Freight:     10,
			ItemCount:   2,
		},
		{
			OrderID:     "o2",
			CustomerID:  "c2",
			Region:      "RJ",
			PurchasedAt: day(2018, 2, 10),
			Month:       day(2018, 2, 1),
			Quarter:     day(2018, 1, 1),
			Year:        2018,
			Weekday:     "Saturday",
			Price:       50,
			Freight:     5,
			ItemCount:   1,
		},
	}
}

func TestSummarize_SingleMonth(t *testing.T) {
	subset := Filter(sampleOrders(), day(2018, 1, 1), day(2018, 1, 31))

	s := Summarize(subset)

	assert.Equal(t, 100.0, s.TotalRevenue)
	assert.Equal(t, 1, s.TotalOrders)
	assert.Equal(t, 100.0, s.AvgTicket)
	assert.Equal(t, 1, s.TotalCustomers)
	assert.Equal(t, 2.0, s.AvgItems)
	assert.Equal(t, 10.0, s.AvgFreight)
	assert.Equal(t, 100.0, s.ConversionRate)
}

func TestSummarize_TwoMonths(t *testing.T) {
	subset := Filter(sampleOrders(), day(2018, 1, 1), day(2018, 2, 28))

	s := Summarize(subset)

	assert.Equal(t, 150.0, s.TotalRevenue)
	assert.Equal(t, 2, s.TotalOrders)
	assert.Equal(t, 75.0, s.AvgTicket)
	assert.Equal(t, 2, s.TotalCustomers)
	assert.InDelta(t, 1.5, s.AvgItems, 1e-9)
	assert.InDelta(t, 7.5, s.AvgFreight, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalRevenue)
	assert.Zero(t, s.TotalOrders)
	assert.Zero(t, s.AvgTicket)
	assert.Zero(t, s.TotalCustomers)
	assert.Zero(t, s.AvgItems)
	assert.Zero(t, s.AvgFreight)
	assert.Zero(t, s.ConversionRate)
}

func TestSummarize_RepeatCustomer(t *testing.T) {
	orders := sampleOrders()
	orders[1].CustomerID = "c1"

	s := Summarize(orders)

	assert.Equal(t, 2, s.TotalOrders)
	assert.Equal(t, 1, s.TotalCustomers)
	assert.Equal(t, 200.0, s.ConversionRate)
}

func TestSummarize_AvgTicketConsistency(t *testing.T) {
	s := Summarize(sampleOrders())

	assert.InDelta(t, s.TotalRevenue/float64(s.TotalOrders), s.AvgTicket, 1e-9)
}

func TestChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     Delta
	}{
		{
			name:     "growth",
			current:  150,
			previous: 100,
			want:     Delta{Percent: 50, HasBaseline: true},
		},
		{
			name:     "decline",
			current:  50,
			previous: 100,
			want:     Delta{Percent: -50, HasBaseline: true},
		},
		{
			name:     "identical periods",
			current:  75,
			previous: 75,
			want:     Delta{Percent: 0, HasBaseline: true},
		},
		{
			name:     "zero baseline",
			current:  100,
			previous: 0,
			want:     Delta{},
		},
		{
			name:     "negative baseline",
			current:  100,
			previous: -5,
			want:     Delta{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Change(tt.current, tt.previous)
			assert.Equal(t, tt.want.HasBaseline, got.HasBaseline)
			assert.InDelta(t, tt.want.Percent, got.Percent, 1e-9)
		})
	}
}

func TestRevenueByPeriod_Month(t *testing.T) {
	buckets := RevenueByPeriod(sampleOrders(), GranularityMonth)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2018-01", buckets[0].Label)
	assert.Equal(t, 100.0, buckets[0].Revenue)
	assert.Equal(t, 1, buckets[0].Orders)
	assert.Equal(t, "2018-02", buckets[1].Label)
	assert.Equal(t, 50.0, buckets[1].Revenue)
}

func TestRevenueByPeriod_Quarter(t *testing.T) {
	buckets := RevenueByPeriod(sampleOrders(), GranularityQuarter)

	require.Len(t, buckets, 1)
	assert.Equal(t, "2018-Q1", buckets[0].Label)
	assert.Equal(t, 150.0, buckets[0].Revenue)
	assert.Equal(t, 2, buckets[0].Orders)
}

func TestRevenueByPeriod_Year(t *testing.T) {
	orders := sampleOrders()
	orders = append(orders, dataset.Order{
		OrderID:     "o3",
		CustomerID:  "c3",
		PurchasedAt: day(2017, 11, 20),
		Month:       day(2017, 11, 1),
		Quarter:     day(2017, 10, 1),
		Year:        2017,
		Weekday:     "Monday",
		Price:       30,
	})

	buckets := RevenueByPeriod(orders, GranularityYear)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2017", buckets[0].Label)
	assert.Equal(t, 30.0, buckets[0].Revenue)
	assert.Equal(t, "2018", buckets[1].Label)
	assert.Equal(t, 150.0, buckets[1].Revenue)
}

func TestOrdersByRegion_TopTenAscending(t *testing.T) {
	var orders []dataset.Order
	for i := 0; i < 12; i++ {
		region := fmt.Sprintf("R%02d", i)
		// Region R00 gets 1 order, R01 gets 2, ... R11 gets 12.
		for j := 0; j <= i; j++ {
			orders = append(orders, dataset.Order{
				OrderID: fmt.Sprintf("%s-%d", region, j),
				Region:  region,
			})
		}
	}

	buckets := OrdersByRegion(orders)

	require.Len(t, buckets, maxRegionRows)
	// The two smallest regions fall out; the rest come back ascending.
	assert.Equal(t, "R02", buckets[0].Key)
	assert.Equal(t, 3, buckets[0].Count)
	assert.Equal(t, "R11", buckets[len(buckets)-1].Key)
	assert.Equal(t, 12, buckets[len(buckets)-1].Count)
	for i := 1; i < len(buckets); i++ {
		assert.LessOrEqual(t, buckets[i-1].Count, buckets[i].Count)
	}
}

func TestOrdersByRegion_SkipsEmptyRegion(t *testing.T) {
	orders := []dataset.Order{
		{OrderID: "o1", Region: "SP"},
		{OrderID: "o2", Region: ""},
	}

	buckets := OrdersByRegion(orders)

	require.Len(t, buckets, 1)
	assert.Equal(t, "SP", buckets[0].Key)
}

func TestOrdersByWeekday_AlwaysSevenRows(t *testing.T) {
	orders := []dataset.Order{
		{OrderID: "o1", Weekday: "Friday"},
		{OrderID: "o2", Weekday: "Friday"},
		{OrderID: "o3", Weekday: "Sunday"},
	}

	buckets := OrdersByWeekday(orders)

	require.Len(t, buckets, 7)
	for i, name := range dataset.WeekdayNames {
		assert.Equal(t, name, buckets[i].Key)
	}
	assert.Equal(t, 0, buckets[0].Count) // Monday
	assert.Equal(t, 2, buckets[4].Count) // Friday
	assert.Equal(t, 1, buckets[6].Count) // Sunday
}

func TestOrdersByWeekday_EmptySubset(t *testing.T) {
	buckets := OrdersByWeekday(nil)

	require.Len(t, buckets, 7)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
	}
}

func TestPaymentTypes_TopSix(t *testing.T) {
	var orders []dataset.Order
	types := []string{"credit_card", "boleto", "voucher", "debit_card", "wallet", "pix", "bank_transfer"}
	for i, pt := range types {
		for j := 0; j < len(types)-i; j++ {
			orders = append(orders, dataset.Order{
				OrderID:     fmt.Sprintf("%s-%d", pt, j),
				PaymentType: pt,
			})
		}
	}
	orders = append(orders, dataset.Order{OrderID: "untyped"})

	buckets := PaymentTypes(orders)

	require.Len(t, buckets, maxPaymentTypeRows)
	assert.Equal(t, "credit_card", buckets[0].Key)
	assert.Equal(t, 7, buckets[0].Count)
	for i := 1; i < len(buckets); i++ {
		assert.GreaterOrEqual(t, buckets[i-1].Count, buckets[i].Count)
	}
	for _, b := range buckets {
		assert.NotEqual(t, "bank_transfer", b.Key)
	}
}
