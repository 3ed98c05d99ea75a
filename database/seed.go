package database

import (
	"fmt"
	"log"

	"portfolio-tracker/models"

	"gorm.io/gorm"
)

type seedCompany struct {
	Name   string
	Symbol string
}

// Reference dataset mapping each declared sector to its companies, in
// display order. Keys must stay within models.SectorNames.
var sectorSeed = map[string][]seedCompany{
	"Technology": {
		{"Apple", "AAPL"},
		{"Microsoft", "MSFT"},
		{"Alphabet", "GOOGL"},
		{"Amazon", "AMZN"},
		{"NVIDIA", "NVDA"},
		{"Meta Platforms", "META"},
		{"Tesla", "TSLA"},
		{"Taiwan Semiconductor", "TSM"},
		{"Salesforce", "CRM"},
		{"Adobe", "ADBE"},
	},
	"Financials": {
		{"JPMorgan Chase", "JPM"},
		{"Bank of America", "BAC"},
		{"Wells Fargo", "WFC"},
		{"Citigroup", "C"},
		{"Morgan Stanley", "MS"},
		{"Goldman Sachs", "GS"},
		{"Visa", "V"},
		{"Mastercard", "MA"},
		{"American Express", "AXP"},
		{"HDFC Bank", "HDFCBANK.NS"},
	},
	"Healthcare": {
		{"Johnson & Johnson", "JNJ"},
		{"UnitedHealth", "UNH"},
		{"Pfizer", "PFE"},
		{"Merck", "MRK"},
		{"AbbVie", "ABBV"},
		{"Eli Lilly", "LLY"},
		{"Thermo Fisher Scientific", "TMO"},
		{"Abbott Laboratories", "ABT"},
		{"Danaher", "DHR"},
		{"Roche Holding", "ROG.SW"},
	},
	"Consumer Discretionary": {
		{"Home Depot", "HD"},
		{"Nike", "NKE"},
		{"McDonald's", "MCD"},
		{"Starbucks", "SBUX"},
		{"Target", "TGT"},
		{"Lowe's", "LOW"},
		{"TJX Companies", "TJX"},
		{"Booking Holdings", "BKNG"},
		{"Marriott International", "MAR"},
		{"Ross Stores", "ROST"},
	},
	"Consumer Staples": {
		{"Walmart", "WMT"},
		{"Procter & Gamble", "PG"},
		{"Coca-Cola", "KO"},
		{"PepsiCo", "PEP"},
		{"Costco", "COST"},
		{"Philip Morris", "PM"},
		{"Mondelez International", "MDLZ"},
		{"Colgate-Palmolive", "CL"},
		{"Estee Lauder", "EL"},
		{"Kimberly-Clark", "KMB"},
	},
	"Energy": {
		{"Exxon Mobil", "XOM"},
		{"Chevron", "CVX"},
		{"ConocoPhillips", "COP"},
		{"Shell", "SHEL"},
		{"BP", "BP"},
		{"TotalEnergies", "TTE"},
		{"EOG Resources", "EOG"},
		{"Schlumberger", "SLB"},
		{"Marathon Petroleum", "MPC"},
		{"Occidental Petroleum", "OXY"},
	},
	"Industrials": {
		{"Boeing", "BA"},
		{"Caterpillar", "CAT"},
		{"General Electric", "GE"},
		{"Honeywell", "HON"},
		{"3M", "MMM"},
		{"Deere & Company", "DE"},
		{"Union Pacific", "UNP"},
		{"Lockheed Martin", "LMT"},
		{"General Dynamics", "GD"},
		{"Raytheon Technologies", "RTX"},
	},
	"Materials": {
		{"Dow", "DOW"},
		{"Newmont", "NEM"},
		{"Linde", "LIN"},
		{"Freeport-McMoRan", "FCX"},
		{"Air Products", "APD"},
		{"Sherwin-Williams", "SHW"},
		{"Nucor", "NUE"},
		{"International Paper", "IP"},
		{"Ecolab", "ECL"},
		{"Ball Corporation", "BALL"},
	},
	"Real Estate": {
		{"American Tower", "AMT"},
		{"Prologis", "PLD"},
		{"Crown Castle", "CCI"},
		{"Equinix", "EQIX"},
		{"Public Storage", "PSA"},
		{"Digital Realty Trust", "DLR"},
		{"Simon Property Group", "SPG"},
		{"Welltower", "WELL"},
		{"Realty Income", "O"},
		{"AvalonBay Communities", "AVB"},
	},
	"US Indices": {
		{"S&P 500", "^GSPC"},
		{"Dow Jones", "^DJI"},
		{"Nasdaq", "^IXIC"},
		{"Russell 2000", "^RUT"},
		{"VIX", "^VIX"},
		{"NYSE Composite", "^NYA"},
		{"Wilshire 5000", "^W5000"},
		{"S&P 100", "^OEX"},
		{"Nasdaq 100", "^NDX"},
		{"Dow Jones Transportation", "^DJT"},
	},
	"Utilities": {
		{"NextEra Energy", "NEE"},
		{"Duke Energy", "DUK"},
		{"Southern Company", "SO"},
		{"Dominion Energy", "D"},
		{"American Electric Power", "AEP"},
		{"Exelon", "EXC"},
		{"Sempra Energy", "SRE"},
		{"Consolidated Edison", "ED"},
		{"Xcel Energy", "XEL"},
		{"Public Service Enterprise Group", "PEG"},
	},
}

// Seed loads the sector reference dataset. Idempotent: a sector that
// already exists is left untouched. Iteration follows models.SectorNames so
// the closed set is both the validator and the ordering.
func Seed(db *gorm.DB) error {
	for _, name := range models.SectorNames {
		companies, ok := sectorSeed[name]
		if !ok {
			return fmt.Errorf("no seed data for sector %q", name)
		}

		var existing models.Sector
		if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
			log.Printf("Sector %q already seeded, skipping", name)
			continue
		}

		sector := models.Sector{Name: name}
		if err := db.Create(&sector).Error; err != nil {
			return fmt.Errorf("create sector %q: %w", name, err)
		}

		rows := make([]models.Company, 0, len(companies))
		for i, c := range companies {
			rows = append(rows, models.Company{
				SectorID: sector.ID,
				Position: i,
				Name:     c.Name,
				Symbol:   c.Symbol,
			})
		}
		if err := CreateInBatches(db, rows, 100); err != nil {
			return fmt.Errorf("seed sector %q: %w", name, err)
		}
		log.Printf("Seeded sector %q with %d companies", name, len(rows))
	}
	return nil
}
