package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"portfolio-tracker/config"
	"portfolio-tracker/marketdata"
	"portfolio-tracker/models"

	"github.com/gin-gonic/gin"
)

// Cache windows for the read-only stock-data routes. Valuation never reads
// these caches; portfolio requests always hit the gateway fresh.
const (
	quoteCacheTTL     = time.Minute
	candlesCacheTTL   = 24 * time.Hour
	defaultResolution = "D"
)

type MultiplePricesInput struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

// GetStockPrice returns the current quote for one symbol, cached briefly
// in Redis.
func GetStockPrice(c *gin.Context) {
	symbol := c.Param("symbol")
	cacheKey := fmt.Sprintf("stock:%s:quote", symbol)

	if cached, err := config.Rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
		var quote marketdata.Quote
		if json.Unmarshal([]byte(cached), &quote) == nil {
			c.JSON(http.StatusOK, quote)
			return
		}
	}

	quote, err := Market.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, marketdata.ErrUnknownSymbol) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if data, err := json.Marshal(quote); err == nil {
		config.Rdb.Set(c.Request.Context(), cacheKey, data, quoteCacheTTL)
	}

	c.JSON(http.StatusOK, quote)
}

// GetMultiplePrices returns quotes for a list of symbols in request order.
// A symbol that cannot be quoted comes back zero-filled.
func GetMultiplePrices(c *gin.Context) {
	var input MultiplePricesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quotes := Market.GetQuotes(c.Request.Context(), input.Symbols)

	result := make([]marketdata.Quote, 0, len(input.Symbols))
	for _, symbol := range input.Symbols {
		q, ok := quotes[symbol]
		if !ok {
			q = marketdata.Quote{Symbol: symbol}
		}
		result = append(result, q)
	}

	c.JSON(http.StatusOK, result)
}

// SearchStocks proxies Finnhub's symbol search.
func SearchStocks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	results, err := Market.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetCompanyProfile proxies Finnhub's company profile.
func GetCompanyProfile(c *gin.Context) {
	symbol := c.Param("symbol")

	profile, err := Market.GetProfile(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetHistoricalData returns daily candles for a symbol, cached in Redis.
// Range defaults to the trailing year.
func GetHistoricalData(c *gin.Context) {
	symbol := c.Param("symbol")
	resolution := c.DefaultQuery("resolution", defaultResolution)

	to := time.Now().Unix()
	from := time.Now().AddDate(-1, 0, 0).Unix()
	if v := c.Query("from"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp"})
			return
		}
		to = parsed
	}

	cacheKey := fmt.Sprintf("stock:%s:history:%s:%d:%d", symbol, resolution, from, to)
	if cached, err := config.Rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
		var candles marketdata.Candles
		if json.Unmarshal([]byte(cached), &candles) == nil {
			c.JSON(http.StatusOK, candles)
			return
		}
	}

	candles, err := Market.GetCandles(c.Request.Context(), symbol, resolution, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if candles.Status == "no_data" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Historical data not found"})
		return
	}

	if data, err := json.Marshal(candles); err == nil {
		config.Rdb.Set(c.Request.Context(), cacheKey, data, candlesCacheTTL)
	}

	c.JSON(http.StatusOK, candles)
}

// GetSectors lists the seeded sector names in declared order.
func GetSectors(c *gin.Context) {
	var sectors []models.Sector
	if err := config.DB.Find(&sectors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sectors"})
		return
	}

	seeded := make(map[string]bool, len(sectors))
	for _, s := range sectors {
		seeded[s.Name] = true
	}

	names := make([]string, 0, len(sectors))
	for _, name := range models.SectorNames {
		if seeded[name] {
			names = append(names, name)
		}
	}

	c.JSON(http.StatusOK, names)
}

// GetSectorStocks lists the companies of one sector. Names outside the
// declared set are rejected outright.
func GetSectorStocks(c *gin.Context) {
	name := c.Param("sector")
	if !models.ValidSector(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown sector"})
		return
	}

	var sector models.Sector
	if err := config.DB.Where("name = ?", name).First(&sector).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown sector"})
		return
	}

	var companies []models.Company
	if err := config.DB.Where("sector_id = ?", sector.ID).Order("position").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sector": sector.Name, "companies": companies})
}

// LookupSymbols returns the ticker symbols matching a company name in the
// reference dataset.
func LookupSymbols(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter name is required"})
		return
	}

	var companies []models.Company
	if err := config.DB.Where("name = ?", name).Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up company"})
		return
	}

	symbols := make([]string, 0, len(companies))
	for _, company := range companies {
		symbols = append(symbols, company.Symbol)
	}

	c.JSON(http.StatusOK, symbols)
}
