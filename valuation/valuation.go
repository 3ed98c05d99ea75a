// Package valuation derives value and profit/loss figures by merging stored
// holdings with live quotes.
package valuation

import (
	"portfolio-tracker/marketdata"
	"portfolio-tracker/models"
)

// EnrichedHolding is a holding combined with its current quote.
type EnrichedHolding struct {
	models.Holding
	CurrentPrice         float64 `json:"currentPrice"`
	CurrentValue         float64 `json:"currentValue"`
	InvestedValue        float64 `json:"investedValue"`
	ProfitLoss           float64 `json:"profitLoss"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"`
	PercentChange        float64 `json:"percentChange"`
}

// Summary aggregates value and profit/loss across a whole portfolio.
type Summary struct {
	TotalCurrentValue         float64 `json:"totalCurrentValue"`
	TotalInvestedValue        float64 `json:"totalInvestedValue"`
	TotalProfitLoss           float64 `json:"totalProfitLoss"`
	TotalProfitLossPercentage float64 `json:"totalProfitLossPercentage"`
}

// PerformanceEntry is the per-holding row of a performance report.
type PerformanceEntry struct {
	Symbol               string  `json:"symbol"`
	Quantity             float64 `json:"quantity"`
	AverageBuyPrice      float64 `json:"averageBuyPrice"`
	CurrentPrice         float64 `json:"currentPrice"`
	CurrentValue         float64 `json:"currentValue"`
	InvestedValue        float64 `json:"investedValue"`
	ProfitLoss           float64 `json:"profitLoss"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"`
	DailyChange          float64 `json:"dailyChange"`
}

// Overall aggregates a performance report.
type Overall struct {
	TotalCurrentValue     float64 `json:"totalCurrentValue"`
	TotalInvestedValue    float64 `json:"totalInvestedValue"`
	TotalReturn           float64 `json:"totalReturn"`
	TotalReturnPercentage float64 `json:"totalReturnPercentage"`
}

// WeightedAverage returns the quantity-weighted mean cost basis after buying
// addQty more units at addPrice on top of oldQty units at oldAvg.
func WeightedAverage(oldQty, oldAvg, addQty, addPrice float64) float64 {
	totalQty := oldQty + addQty
	if totalQty == 0 {
		return 0
	}
	return (oldQty*oldAvg + addQty*addPrice) / totalQty
}

// Enrich computes value and profit/loss for holdings against quotes. A
// symbol missing from quotes values at price 0 rather than failing.
// ProfitLossPercentage is 0 whenever InvestedValue is 0.
func Enrich(holdings []models.Holding, quotes map[string]marketdata.Quote) ([]EnrichedHolding, Summary) {
	enriched := make([]EnrichedHolding, 0, len(holdings))
	var summary Summary

	for _, h := range holdings {
		q := quotes[h.Symbol]

		currentValue := h.Quantity * q.CurrentPrice
		investedValue := h.Quantity * h.AverageBuyPrice
		profitLoss := currentValue - investedValue
		var profitLossPct float64
		if investedValue > 0 {
			profitLossPct = profitLoss / investedValue * 100
		}

		enriched = append(enriched, EnrichedHolding{
			Holding:              h,
			CurrentPrice:         q.CurrentPrice,
			CurrentValue:         currentValue,
			InvestedValue:        investedValue,
			ProfitLoss:           profitLoss,
			ProfitLossPercentage: profitLossPct,
			PercentChange:        q.PercentChange,
		})

		summary.TotalCurrentValue += currentValue
		summary.TotalInvestedValue += investedValue
	}

	summary.TotalProfitLoss = summary.TotalCurrentValue - summary.TotalInvestedValue
	if summary.TotalInvestedValue > 0 {
		summary.TotalProfitLossPercentage = summary.TotalProfitLoss / summary.TotalInvestedValue * 100
	}

	return enriched, summary
}

// Performance shapes the same math as Enrich into a performance report,
// passing through the quote's daily percent change.
func Performance(holdings []models.Holding, quotes map[string]marketdata.Quote) ([]PerformanceEntry, Overall) {
	entries := make([]PerformanceEntry, 0, len(holdings))
	var overall Overall

	enriched, summary := Enrich(holdings, quotes)
	for _, e := range enriched {
		entries = append(entries, PerformanceEntry{
			Symbol:               e.Symbol,
			Quantity:             e.Quantity,
			AverageBuyPrice:      e.AverageBuyPrice,
			CurrentPrice:         e.CurrentPrice,
			CurrentValue:         e.CurrentValue,
			InvestedValue:        e.InvestedValue,
			ProfitLoss:           e.ProfitLoss,
			ProfitLossPercentage: e.ProfitLossPercentage,
			DailyChange:          e.PercentChange,
		})
	}

	overall.TotalCurrentValue = summary.TotalCurrentValue
	overall.TotalInvestedValue = summary.TotalInvestedValue
	overall.TotalReturn = summary.TotalProfitLoss
	overall.TotalReturnPercentage = summary.TotalProfitLossPercentage

	return entries, overall
}
