package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/marketdata"
	"portfolio-tracker/middleware"
	"portfolio-tracker/models"
	"portfolio-tracker/valuation"

	"github.com/gin-gonic/gin"
)

var errHoldingNotFound = errors.New("holding not found")

type AddStockInput struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	BuyPrice float64 `json:"buyPrice" binding:"required,gt=0"`
}

type UpdateStockInput struct {
	Quantity float64  `json:"quantity" binding:"required,gt=0"`
	BuyPrice *float64 `json:"buyPrice"`
}

// GetPortfolio returns the user's holdings enriched with live quotes plus
// portfolio-level totals. Quotes are fetched fresh on every call.
func GetPortfolio(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(uint)

	p, err := database.GetOrCreatePortfolio(config.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load portfolio"})
		return
	}

	quotes := fetchQuotes(c, p.Holdings)
	holdings, summary := valuation.Enrich(p.Holdings, quotes)

	c.JSON(http.StatusOK, gin.H{"holdings": holdings, "summary": summary})
}

// AddStock records a buy. An existing holding for the symbol is merged:
// quantities sum and the average buy price re-weights across the combined
// position. This is the "merge-buy" operation; UpdateStock is the explicit
// "replace" counterpart.
func AddStock(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(uint)

	var input AddStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.TrimSpace(input.Symbol)

	// Existence check against the price gateway before touching storage.
	if _, err := Market.GetQuote(c.Request.Context(), symbol); err != nil {
		if errors.Is(err, marketdata.ErrUnknownSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock symbol"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	p, err := database.MutatePortfolio(config.DB, userID, true, func(p *models.Portfolio) error {
		for i := range p.Holdings {
			h := &p.Holdings[i]
			if h.Symbol != symbol {
				continue
			}
			h.AverageBuyPrice = valuation.WeightedAverage(h.Quantity, h.AverageBuyPrice, input.Quantity, input.BuyPrice)
			h.Quantity += input.Quantity
			h.Transactions = append(h.Transactions, models.TransactionBuy)
			return nil
		}

		p.Holdings = append(p.Holdings, models.Holding{
			Symbol:          symbol,
			Quantity:        input.Quantity,
			AverageBuyPrice: input.BuyPrice,
			Transactions:    []string{models.TransactionBuy},
			PurchaseDate:    time.Now(),
		})
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Stock added to portfolio", "portfolio": p})
}

// UpdateStock overwrites a holding's quantity and, when given, its average
// buy price. No re-weighting happens here.
func UpdateStock(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(uint)
	symbol := c.Param("symbol")

	var input UpdateStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid quantity is required"})
		return
	}

	p, err := database.MutatePortfolio(config.DB, userID, false, func(p *models.Portfolio) error {
		for i := range p.Holdings {
			h := &p.Holdings[i]
			if h.Symbol != symbol {
				continue
			}
			h.Quantity = input.Quantity
			if input.BuyPrice != nil && *input.BuyPrice > 0 {
				h.AverageBuyPrice = *input.BuyPrice
			}
			return nil
		}
		return errHoldingNotFound
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrPortfolioNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		case errors.Is(err, errHoldingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found in portfolio"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock updated in portfolio", "portfolio": p})
}

// RemoveStock filters the holding out. Removing a symbol that is not held
// succeeds and changes nothing.
func RemoveStock(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(uint)
	symbol := c.Param("symbol")

	p, err := database.MutatePortfolio(config.DB, userID, false, func(p *models.Portfolio) error {
		kept := p.Holdings[:0]
		for _, h := range p.Holdings {
			if h.Symbol != symbol {
				kept = append(kept, h)
			}
		}
		p.Holdings = kept
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock removed from portfolio", "portfolio": p})
}

// GetPerformance returns the per-holding performance report with the daily
// percent change passed through from the quote.
func GetPerformance(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(uint)

	p, err := database.GetPortfolio(config.DB, userID)
	if err != nil && !errors.Is(err, database.ErrPortfolioNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load portfolio"})
		return
	}

	var holdings []models.Holding
	if p != nil {
		holdings = p.Holdings
	}

	quotes := fetchQuotes(c, holdings)
	performance, overall := valuation.Performance(holdings, quotes)

	c.JSON(http.StatusOK, gin.H{"performance": performance, "overall": overall})
}

// fetchQuotes fans out one quote request per held symbol. Symbols whose
// fetch fails are absent from the map and value at price 0 downstream.
func fetchQuotes(c *gin.Context, holdings []models.Holding) map[string]marketdata.Quote {
	if len(holdings) == 0 {
		return nil
	}
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	return Market.GetQuotes(c.Request.Context(), symbols)
}
