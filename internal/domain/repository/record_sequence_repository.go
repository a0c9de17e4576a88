package repository

import "gorm.io/gorm"

type RecordSequenceRepository interface {
	Ensure(db *gorm.DB, name string) error
	Next(db *gorm.DB, name string) (int64, error)
	Current(db *gorm.DB, name string) (int64, error)
	RaiseFloor(db *gorm.DB, name string, value int64) error
}
