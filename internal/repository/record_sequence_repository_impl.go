package repository

import (
	"errors"

	"smartcare/internal/domain/entity"
	domainRepo "smartcare/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recordSequenceRepository struct{}

func NewRecordSequenceRepository() domainRepo.RecordSequenceRepository {
	return &recordSequenceRepository{}
}

func (r *recordSequenceRepository) Ensure(db *gorm.DB, name string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.RecordSequence{Name: name}).Error
}

// Next increments the sequence and returns the new value. The UPDATE holds
// the row lock until the surrounding transaction ends, so concurrent callers
// never observe the same value.
func (r *recordSequenceRepository) Next(db *gorm.DB, name string) (int64, error) {
	result := db.Model(&entity.RecordSequence{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		if err := db.Create(&entity.RecordSequence{Name: name, Value: 1}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	return r.Current(db, name)
}

func (r *recordSequenceRepository) Current(db *gorm.DB, name string) (int64, error) {
	var seq entity.RecordSequence
	err := db.Where("name = ?", name).Take(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return seq.Value, nil
}

// RaiseFloor moves the sequence up to value; it never moves it down.
func (r *recordSequenceRepository) RaiseFloor(db *gorm.DB, name string, value int64) error {
	if err := r.Ensure(db, name); err != nil {
		return err
	}
	return db.Model(&entity.RecordSequence{}).
		Where("name = ? AND value < ?", name, value).
		UpdateColumn("value", value).Error
}
