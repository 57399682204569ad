package store

import (
	"sort"

	"github.com/gokulpos/restaurant-pos/models"
	"github.com/gokulpos/restaurant-pos/utils"
)

type StaffPerformance struct {
	StaffName     string  `json:"staff_name"`
	OrderCount    int     `json:"order_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

type PopularItem struct {
	ItemName      string  `json:"item_name"`
	TotalQuantity int     `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
	TotalRevenue  float64 `json:"total_revenue"`
}

type DailySalesPoint struct {
	Date         string  `json:"date"`
	OrderCount   int     `json:"order_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

type HourlySalesPoint struct {
	Hour         int     `json:"hour"`
	OrderCount   int     `json:"order_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// Aggregations run over fetched rows rather than dialect-specific SQL so
// both backends produce identical shapes regardless of collation or
// date-function differences.

func aggregateStaffPerformance(bills []models.Bill) []StaffPerformance {
	byStaff := make(map[string]*StaffPerformance)
	for _, bill := range bills {
		stats, ok := byStaff[bill.StaffName]
		if !ok {
			stats = &StaffPerformance{StaffName: bill.StaffName}
			byStaff[bill.StaffName] = stats
		}
		stats.OrderCount++
		stats.TotalRevenue = utils.Round2(stats.TotalRevenue + bill.Total)
	}
	performance := make([]StaffPerformance, 0, len(byStaff))
	for _, stats := range byStaff {
		if stats.OrderCount > 0 {
			stats.AvgOrderValue = utils.Round2(stats.TotalRevenue / float64(stats.OrderCount))
		}
		performance = append(performance, *stats)
	}
	sort.Slice(performance, func(i, j int) bool {
		return performance[i].StaffName < performance[j].StaffName
	})
	return performance
}

func aggregatePopularItems(items []models.OrderItem) []PopularItem {
	byItem := make(map[string]*PopularItem)
	for _, item := range items {
		stats, ok := byItem[item.ItemName]
		if !ok {
			stats = &PopularItem{ItemName: item.ItemName}
			byItem[item.ItemName] = stats
		}
		stats.TotalQuantity += item.Quantity
		stats.OrderCount++
		stats.TotalRevenue = utils.Round2(stats.TotalRevenue + float64(item.Quantity)*item.Price)
	}
	popular := make([]PopularItem, 0, len(byItem))
	for _, stats := range byItem {
		popular = append(popular, *stats)
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].TotalQuantity != popular[j].TotalQuantity {
			return popular[i].TotalQuantity > popular[j].TotalQuantity
		}
		return popular[i].ItemName < popular[j].ItemName
	})
	if len(popular) > 20 {
		popular = popular[:20]
	}
	return popular
}

func aggregateDailySales(bills []models.Bill) []DailySalesPoint {
	byDate := make(map[string]*DailySalesPoint)
	for _, bill := range bills {
		date := bill.CreatedAt.Format("2006-01-02")
		stats, ok := byDate[date]
		if !ok {
			stats = &DailySalesPoint{Date: date}
			byDate[date] = stats
		}
		stats.OrderCount++
		stats.TotalRevenue = utils.Round2(stats.TotalRevenue + bill.Total)
	}
	daily := make([]DailySalesPoint, 0, len(byDate))
	for _, stats := range byDate {
		daily = append(daily, *stats)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return daily
}

func aggregateHourlySales(bills []models.Bill) []HourlySalesPoint {
	byHour := make(map[int]*HourlySalesPoint)
	for _, bill := range bills {
		hour := bill.CreatedAt.Hour()
		stats, ok := byHour[hour]
		if !ok {
			stats = &HourlySalesPoint{Hour: hour}
			byHour[hour] = stats
		}
		stats.OrderCount++
		stats.TotalRevenue = utils.Round2(stats.TotalRevenue + bill.Total)
	}
	hourly := make([]HourlySalesPoint, 0, len(byHour))
	for _, stats := range byHour {
		hourly = append(hourly, *stats)
	}
	sort.Slice(hourly, func(i, j int) bool { return hourly[i].Hour < hourly[j].Hour })
	return hourly
}
