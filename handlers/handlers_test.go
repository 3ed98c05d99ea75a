package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-tracker/config"
	"portfolio-tracker/marketdata"
	"portfolio-tracker/middleware"
	"portfolio-tracker/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// fakeFinnhub serves /quote from a symbol -> price map; unknown symbols get
// the all-zero body Finnhub really returns.
func fakeFinnhub(prices map[string]float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			symbol := r.URL.Query().Get("symbol")
			price, ok := prices[symbol]
			if !ok {
				fmt.Fprint(w, `{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`)
				return
			}
			fmt.Fprintf(w, `{"c":%f,"d":1,"dp":1.5,"h":%f,"l":%f,"o":%f,"pc":%f,"t":123}`,
				price, price+1, price-1, price, price-1)
		case "/search":
			fmt.Fprint(w, `{"count":1,"result":[{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"}]}`)
		case "/stock/profile2":
			fmt.Fprint(w, `{"name":"Apple Inc","ticker":"AAPL","exchange":"NASDAQ","currency":"USD"}`)
		case "/stock/candle":
			fmt.Fprint(w, `{"c":[10],"h":[11],"l":[9],"o":[10],"s":"ok","t":[1],"v":[100]}`)
		default:
			http.NotFound(w, r)
		}
	})
}

// setupTest swaps the package collaborators for test doubles and returns a
// router wired the same way main wires it.
func setupTest(t *testing.T, prices map[string]float64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Sector{},
		&models.Company{},
	))
	config.DB = db

	mr := miniredis.RunT(t)
	config.Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := httptest.NewServer(fakeFinnhub(prices))
	t.Cleanup(srv.Close)
	Init(marketdata.NewClient("test-key", marketdata.WithBaseURL(srv.URL), marketdata.WithRateLimit(1000)), testSecret)

	router := gin.New()
	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", middleware.LoginRateLimit(config.Rdb), Login)
	auth.GET("/validate", middleware.JWTAuth(testSecret), Validate)

	portfolio := api.Group("/portfolio")
	portfolio.Use(middleware.JWTAuth(testSecret))
	portfolio.GET("", GetPortfolio)
	portfolio.POST("/add", AddStock)
	portfolio.PUT("/update/:symbol", UpdateStock)
	portfolio.DELETE("/remove/:symbol", RemoveStock)
	portfolio.GET("/performance", GetPerformance)

	stocks := api.Group("/stocks")
	stocks.GET("/price/:symbol", GetStockPrice)
	stocks.POST("/prices", GetMultiplePrices)
	stocks.GET("/search", SearchStocks)
	stocks.GET("/profile/:symbol", GetCompanyProfile)
	stocks.GET("/historical/:symbol", GetHistoricalData)
	stocks.GET("/sectors", GetSectors)
	stocks.GET("/sectors/:sector", GetSectorStocks)
	stocks.GET("/lookup", LookupSymbols)

	return router
}

func bearerToken(t *testing.T, userID uint, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
