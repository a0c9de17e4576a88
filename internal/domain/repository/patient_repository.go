package repository

import (
	"time"

	"smartcare/internal/domain/entity"

	"gorm.io/gorm"
)

// PatientFilter narrows a patient search. Query matches MRD, sno and
// department case-insensitively.
type PatientFilter struct {
	Query      string
	Department string
	Outcome    string
	Limit      int
	Offset     int
}

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	CreateIfAbsent(db *gorm.DB, patient *entity.Patient) (bool, error)
	FindBySno(db *gorm.DB, sno int64) (*entity.Patient, error)
	FindBySnoForUpdate(db *gorm.DB, sno int64) (*entity.Patient, error)
	FindAll(db *gorm.DB) ([]entity.Patient, error)
	Search(db *gorm.DB, filter *PatientFilter) ([]entity.Patient, int64, error)
	Update(db *gorm.DB, patient *entity.Patient) error
	CountAdmittedOn(db *gorm.DB, day time.Time) (int64, error)
	CountDischargedOn(db *gorm.DB, day time.Time) (int64, error)
	FindMovementsSince(db *gorm.DB, since time.Time) ([]entity.Patient, error)
	AverageDurationOfStay(db *gorm.DB) (float64, error)
	CountByColumn(db *gorm.DB, column string, limit int) ([]entity.CategoryCount, error)
}
