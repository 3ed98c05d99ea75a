package database

import (
	"errors"
	"fmt"
	"reflect"

	"portfolio-tracker/models"

	"gorm.io/gorm"
)

var (
	// ErrPortfolioNotFound signals a mutation against a user with no
	// portfolio yet.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrVersionConflict signals that a concurrent writer saved the
	// portfolio between our read and our write.
	ErrVersionConflict = errors.New("portfolio version conflict")

	ErrInvalidBatchSize = errors.New("invalid batch size")
	ErrInvalidData      = errors.New("invalid data, expected slice")
)

// How many times a read-modify-write cycle is retried on version conflict
// before the request gives up.
const maxSaveRetries = 3

// GetOrCreatePortfolio loads a user's portfolio with its holdings, creating
// an empty one on first access.
func GetOrCreatePortfolio(db *gorm.DB, userID uint) (*models.Portfolio, error) {
	p, err := GetPortfolio(db, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPortfolioNotFound) {
		return nil, err
	}

	fresh := models.Portfolio{UserID: userID}
	if err := db.Create(&fresh).Error; err != nil {
		// Lost a create race: the other writer's row is the portfolio.
		if p, err2 := GetPortfolio(db, userID); err2 == nil {
			return p, nil
		}
		return nil, err
	}
	return &fresh, nil
}

// GetPortfolio loads a user's portfolio with its holdings.
func GetPortfolio(db *gorm.DB, userID uint) (*models.Portfolio, error) {
	var p models.Portfolio
	err := db.Preload("Holdings").Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MutatePortfolio runs mutate against a freshly loaded portfolio and saves
// the result under a version check, retrying the whole cycle when another
// writer got there first. With create false, a missing portfolio is
// ErrPortfolioNotFound; with create true an empty one is made on the fly.
func MutatePortfolio(db *gorm.DB, userID uint, create bool, mutate func(*models.Portfolio) error) (*models.Portfolio, error) {
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		var p *models.Portfolio
		var err error
		if create {
			p, err = GetOrCreatePortfolio(db, userID)
		} else {
			p, err = GetPortfolio(db, userID)
		}
		if err != nil {
			return nil, err
		}

		if err := mutate(p); err != nil {
			return nil, err
		}

		err = SavePortfolio(db, p)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, ErrVersionConflict
}

// SavePortfolio persists the in-memory holdings list wholesale, guarded by
// a conditional version bump. The holdings rows are replaced inside the
// same transaction, mirroring a single-document save.
func SavePortfolio(db *gorm.DB, p *models.Portfolio) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Portfolio{}).
			Where("id = ? AND version = ?", p.ID, p.Version).
			Update("version", p.Version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if err := tx.Unscoped().Where("portfolio_id = ?", p.ID).Delete(&models.Holding{}).Error; err != nil {
			return err
		}

		for i := range p.Holdings {
			p.Holdings[i].Model = gorm.Model{}
			p.Holdings[i].PortfolioID = p.ID
		}
		if len(p.Holdings) > 0 {
			if err := tx.Create(&p.Holdings).Error; err != nil {
				return err
			}
		}

		p.Version++
		return nil
	})
}

// CreateInBatches inserts a slice in chunks inside one transaction.
func CreateInBatches(db *gorm.DB, data interface{}, batchSize int) error {
	if batchSize <= 0 {
		return ErrInvalidBatchSize
	}

	slice := reflect.ValueOf(data)
	if slice.Kind() != reflect.Slice {
		return ErrInvalidData
	}

	return db.Transaction(func(tx *gorm.DB) error {
		total := slice.Len()
		for i := 0; i < total; i += batchSize {
			end := i + batchSize
			if end > total {
				end = total
			}

			chunk := slice.Slice(i, end).Interface()
			if err := tx.Create(chunk).Error; err != nil {
				return fmt.Errorf("batch insert failed: %w", err)
			}
		}
		return nil
	})
}
