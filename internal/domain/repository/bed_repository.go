package repository

import (
	"smartcare/internal/domain/entity"

	"gorm.io/gorm"
)

type BedRepository interface {
	CreateBatch(db *gorm.DB, beds []entity.Bed) error
	FindFirstFreeForUpdate(db *gorm.DB, department string) (*entity.Bed, error)
	FindByPatientForUpdate(db *gorm.DB, patientSno int64) (*entity.Bed, error)
	FindByPatient(db *gorm.DB, patientSno int64) (*entity.Bed, error)
	FindAll(db *gorm.DB, department string) ([]entity.Bed, error)
	FindSerialsWithPrefix(db *gorm.DB, prefix string) ([]string, error)
	FindExistingSerials(db *gorm.DB, serials []string) ([]string, error)
	CountByDepartment(db *gorm.DB, department string) (int64, error)
	Occupy(db *gorm.DB, bedSerial string, patientSno int64) (int64, error)
	Vacate(db *gorm.DB, bedSerial string) (int64, error)
	RelabelDepartment(db *gorm.DB, patientSno int64, department string) (int64, error)
	Summarize(db *gorm.DB) ([]entity.DepartmentSummary, error)
}
