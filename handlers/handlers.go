package handlers

import (
	"portfolio-tracker/marketdata"
)

// Package-level collaborators, wired once from main. Tests swap these for
// fakes alongside config.DB / config.Rdb.
var (
	Market    *marketdata.Client
	JWTSecret string
)

// Init wires the market-data client and the signing secret.
func Init(market *marketdata.Client, jwtSecret string) {
	Market = market
	JWTSecret = jwtSecret
}
