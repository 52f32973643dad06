package analytics

import (
	"time"

	"shoplens/internal/dataset"
)

// Filter returns the orders whose purchase timestamp lies in [start, end],
// inclusive on both ends to match the date-picker semantics.
func Filter(orders []dataset.Order, start, end time.Time) []dataset.Order {
	subset := make([]dataset.Order, 0)
	for _, order := range orders {
		if order.PurchasedAt.Before(start) || order.PurchasedAt.After(end) {
			continue
		}
		subset = append(subset, order)
	}
	return subset
}

// PreviousRange derives the immediately preceding comparison window of
// equal length: prev_end = start, prev_start = start - (end - start). The
// window is half-open [prev_start, prev_end) so the boundary instant is
// never counted twice.
func PreviousRange(start, end time.Time) (time.Time, time.Time) {
	length := end.Sub(start)
	return start.Add(-length), start
}

// FilterPrevious returns the orders falling in the comparison window for
// [start, end]. When the window reaches before the dataset's first order
// the subset is simply smaller; no clamping happens.
func FilterPrevious(orders []dataset.Order, start, end time.Time) []dataset.Order {
	prevStart, prevEnd := PreviousRange(start, end)

	subset := make([]dataset.Order, 0)
	for _, order := range orders {
		if order.PurchasedAt.Before(prevStart) || !order.PurchasedAt.Before(prevEnd) {
			continue
		}
		subset = append(subset, order)
	}
	return subset
}
