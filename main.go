package main

import (
	"flag"
	"log"
	"net/http"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/handlers"
	"portfolio-tracker/marketdata"
	"portfolio-tracker/middleware"
	"portfolio-tracker/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", false, "seed the sector reference dataset and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	config.InitDB(cfg)
	config.InitRedis(cfg)

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Sector{},
		&models.Company{},
	); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}

	if *seed {
		if err := database.Seed(config.DB); err != nil {
			log.Fatal("Seed failed: ", err)
		}
		log.Println("Seed complete")
		return
	}

	handlers.Init(marketdata.NewClient(cfg.FinnhubAPIKey, marketdata.WithBaseURL(cfg.FinnhubURL)), cfg.JWTSecret)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.AllowedOrigin}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", middleware.LoginRateLimit(config.Rdb), handlers.Login)
		auth.GET("/validate", middleware.JWTAuth(cfg.JWTSecret), handlers.Validate)
	}

	portfolio := api.Group("/portfolio")
	portfolio.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		portfolio.GET("", handlers.GetPortfolio)
		portfolio.POST("/add", handlers.AddStock)
		portfolio.PUT("/update/:symbol", handlers.UpdateStock)
		portfolio.DELETE("/remove/:symbol", handlers.RemoveStock)
		portfolio.GET("/performance", handlers.GetPerformance)
	}

	stocks := api.Group("/stocks")
	{
		stocks.GET("/price/:symbol", handlers.GetStockPrice)
		stocks.POST("/prices", handlers.GetMultiplePrices)
		stocks.GET("/search", handlers.SearchStocks)
		stocks.GET("/profile/:symbol", handlers.GetCompanyProfile)
		stocks.GET("/historical/:symbol", handlers.GetHistoricalData)
		stocks.GET("/sectors", handlers.GetSectors)
		stocks.GET("/sectors/:sector", handlers.GetSectorStocks)
		stocks.GET("/lookup", handlers.LookupSymbols)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed: ", err)
	}
}
