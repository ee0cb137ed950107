package services

import (
	"sort"
	"time"

	"github.com/piternoufi/quarry-orders-api/models"
)

// ConsumptionEntry is one row of a grouped-consumption breakdown
type ConsumptionEntry struct {
	Key        string  `json:"key"`
	OrderCount int     `json:"order_count"`
	Tons       float64 `json:"tons"`
}

// MonthPoint is one month of the rolling time series
type MonthPoint struct {
	Month         string  `json:"month"` // YYYY-MM
	OrderCount    int     `json:"order_count"`
	Tons          float64 `json:"tons"`
	AverageRating float64 `json:"average_rating"`
}

// WeeklyWidget summarizes the last seven days
type WeeklyWidget struct {
	OrdersCreated int     `json:"orders_created"`
	TonsDelivered float64 `json:"tons_delivered"`
	AverageRating float64 `json:"average_rating"`
}

// ReportSummary is the full dashboard snapshot computed from the bulk order list
type ReportSummary struct {
	MonthlyByClient   []ConsumptionEntry `json:"monthly_by_client"`
	MonthlyByProduct  []ConsumptionEntry `json:"monthly_by_product"`
	MonthlyBySupplier []ConsumptionEntry `json:"monthly_by_supplier"`

	AverageApprovalHours float64 `json:"average_approval_hours"`
	OnTimeDeliveryRate   float64 `json:"on_time_delivery_rate"`
	AverageRating        float64 `json:"average_rating"`

	SixMonthSeries []MonthPoint `json:"six_month_series"`
	Weekly         WeeklyWidget `json:"weekly"`
}

const topConsumersLimit = 5

// BuildReportSummary computes the dashboard statistics from the order
// snapshot. Everything is a single O(n) pass per section; the snapshot is
// bounded by the bulk-list cap, so no incremental computation is kept.
// Orders should have Client/Product associations preloaded for display names.
func BuildReportSummary(orders []models.Order, now time.Time) ReportSummary {
	summary := ReportSummary{}

	currentMonth := now.Format("2006-01")
	byClient := map[string]*ConsumptionEntry{}
	byProduct := map[string]*ConsumptionEntry{}
	bySupplier := map[string]*ConsumptionEntry{}

	var approvalHoursSum float64
	var approvalCount int
	var deliveredCount, onTimeCount int
	var ratingSum, ratingCount int

	weekAgo := now.AddDate(0, 0, -7)

	for i := range orders {
		o := &orders[i]
		effective := o.ComputeEffectiveStatus()

		// Monthly consumption, current month only
		if o.DeliveryDate.Format("2006-01") == currentMonth {
			accumulate(byClient, clientKey(o), o.QuantityTons)
			accumulate(byProduct, productKey(o), o.QuantityTons)
			accumulate(bySupplier, o.Supplier, o.QuantityTons)
		}

		// Average approval time over orders that made it past pending
		if effective == models.StatusApproved || effective == models.StatusInTransit || effective == models.StatusCompleted {
			approvalHoursSum += o.UpdatedAt.Sub(o.CreatedAt).Hours()
			approvalCount++
		}

		// On-time rate: recorded delivery by end of the planned day
		if deliveredAt := deliveryTimestamp(o); deliveredAt != nil {
			deliveredCount++
			endOfPlannedDay := time.Date(o.DeliveryDate.Year(), o.DeliveryDate.Month(), o.DeliveryDate.Day(),
				23, 59, 59, 0, o.DeliveryDate.Location())
			if !deliveredAt.After(endOfPlannedDay) {
				onTimeCount++
			}
		}

		if o.Rating != nil {
			ratingSum += *o.Rating
			ratingCount++
		}

		// Weekly widget
		if o.CreatedAt.After(weekAgo) {
			summary.Weekly.OrdersCreated++
		}
		if deliveredAt := deliveryTimestamp(o); deliveredAt != nil && deliveredAt.After(weekAgo) {
			summary.Weekly.TonsDelivered += o.DeliveredQuantityTons
		}
	}

	summary.MonthlyByClient = topEntries(byClient)
	summary.MonthlyByProduct = topEntries(byProduct)
	summary.MonthlyBySupplier = topEntries(bySupplier)

	if approvalCount > 0 {
		summary.AverageApprovalHours = approvalHoursSum / float64(approvalCount)
	}
	if deliveredCount > 0 {
		summary.OnTimeDeliveryRate = float64(onTimeCount) / float64(deliveredCount) * 100
	}
	if ratingCount > 0 {
		summary.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	summary.SixMonthSeries = sixMonthSeries(orders, now)
	summary.Weekly.AverageRating = weeklyAverageRating(orders, weekAgo)

	return summary
}

// sixMonthSeries builds the rolling per-month counts, tonnage and ratings
func sixMonthSeries(orders []models.Order, now time.Time) []MonthPoint {
	series := make([]MonthPoint, 0, 6)
	for offset := 5; offset >= 0; offset-- {
		month := now.AddDate(0, -offset, 0).Format("2006-01")
		point := MonthPoint{Month: month}
		var ratingSum, ratingCount int
		for i := range orders {
			o := &orders[i]
			if o.CreatedAt.Format("2006-01") != month {
				continue
			}
			point.OrderCount++
			point.Tons += o.QuantityTons
			if o.Rating != nil {
				ratingSum += *o.Rating
				ratingCount++
			}
		}
		if ratingCount > 0 {
			point.AverageRating = float64(ratingSum) / float64(ratingCount)
		}
		series = append(series, point)
	}
	return series
}

// weeklyAverageRating averages ratings stamped within the last seven days
func weeklyAverageRating(orders []models.Order, weekAgo time.Time) float64 {
	var sum, count int
	for i := range orders {
		o := &orders[i]
		if o.Rating != nil && o.RatedAt != nil && o.RatedAt.After(weekAgo) {
			sum += *o.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// deliveryTimestamp picks the recorded delivery time, preferring DeliveredAt
func deliveryTimestamp(o *models.Order) *time.Time {
	if o.DeliveredAt != nil {
		return o.DeliveredAt
	}
	return o.ActualDeliveryDate
}

func accumulate(m map[string]*ConsumptionEntry, key string, tons float64) {
	entry, ok := m[key]
	if !ok {
		entry = &ConsumptionEntry{Key: key}
		m[key] = entry
	}
	entry.OrderCount++
	entry.Tons += tons
}

// topEntries sorts a grouped breakdown by tonnage descending and truncates to
// the top five
func topEntries(m map[string]*ConsumptionEntry) []ConsumptionEntry {
	entries := make([]ConsumptionEntry, 0, len(m))
	for _, e := range m {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Tons != entries[j].Tons {
			return entries[i].Tons > entries[j].Tons
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > topConsumersLimit {
		entries = entries[:topConsumersLimit]
	}
	return entries
}

func clientKey(o *models.Order) string {
	if o.Client.Name != "" {
		return o.Client.Name
	}
	return "unknown"
}

func productKey(o *models.Order) string {
	if o.Product.NameHe != "" {
		return o.Product.NameHe
	}
	return "unknown"
}
