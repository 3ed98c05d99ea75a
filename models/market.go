package models

import (
	"gorm.io/gorm"
)

// SectorNames is the closed set of permissible sector keys for the
// reference dataset. Seeding and lookups reject anything outside it.
var SectorNames = []string{
	"Technology",
	"Consumer Discretionary",
	"Consumer Staples",
	"Energy",
	"Financials",
	"Healthcare",
	"Industrials",
	"Materials",
	"Real Estate",
	"US Indices",
	"Utilities",
}

// ValidSector reports whether name is one of the declared sector keys.
func ValidSector(name string) bool {
	for _, s := range SectorNames {
		if s == name {
			return true
		}
	}
	return false
}

// Sector is one entry of the sector -> companies reference dataset.
type Sector struct {
	gorm.Model
	Name      string    `json:"sector" gorm:"uniqueIndex"`
	Companies []Company `json:"companies" gorm:"foreignKey:SectorID"`
}

// Company is a listed company within a sector. Position preserves the
// order the dataset was declared in.
type Company struct {
	gorm.Model
	SectorID uint   `json:"-" gorm:"index"`
	Position int    `json:"-"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}
