package repository

import (
	"smartcare/internal/domain/entity"
	domainRepo "smartcare/internal/domain/repository"

	"gorm.io/gorm"
)

type bedRepository struct{}

func NewBedRepository() domainRepo.BedRepository {
	return &bedRepository{}
}

func (r *bedRepository) CreateBatch(db *gorm.DB, beds []entity.Bed) error {
	if len(beds) == 0 {
		return nil
	}
	return db.Omit("Patient").Create(&beds).Error
}

// FindFirstFreeForUpdate returns the free bed with the smallest serial in the
// department, locked for the rest of the transaction. Concurrent callers skip
// each other's locked rows instead of waiting on them.
func (r *bedRepository) FindFirstFreeForUpdate(db *gorm.DB, department string) (*entity.Bed, error) {
	var beds []entity.Bed
	err := lockForUpdate(db, true).
		Where("department = ? AND occupied = ?", department, entity.OccupiedNo).
		Order("bed_serial ASC").
		Limit(1).
		Find(&beds).Error
	if err != nil {
		return nil, err
	}
	if len(beds) == 0 {
		return nil, nil
	}
	return &beds[0], nil
}

func (r *bedRepository) FindByPatientForUpdate(db *gorm.DB, patientSno int64) (*entity.Bed, error) {
	return r.FindByPatient(lockForUpdate(db, false), patientSno)
}

func (r *bedRepository) FindByPatient(db *gorm.DB, patientSno int64) (*entity.Bed, error) {
	var beds []entity.Bed
	err := db.Where("patient_sno = ?", patientSno).Limit(1).Find(&beds).Error
	if err != nil {
		return nil, err
	}
	if len(beds) == 0 {
		return nil, nil
	}
	return &beds[0], nil
}

func (r *bedRepository) FindAll(db *gorm.DB, department string) ([]entity.Bed, error) {
	query := db.Model(&entity.Bed{})
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var beds []entity.Bed
	err := query.Order("bed_serial ASC").Find(&beds).Error
	if err != nil {
		return nil, err
	}
	return beds, nil
}

func (r *bedRepository) FindSerialsWithPrefix(db *gorm.DB, prefix string) ([]string, error) {
	var serials []string
	err := db.Model(&entity.Bed{}).
		Where("bed_serial LIKE ?", prefix+"%").
		Pluck("bed_serial", &serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}

func (r *bedRepository) FindExistingSerials(db *gorm.DB, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	var existing []string
	err := db.Model(&entity.Bed{}).
		Where("bed_serial IN ?", serials).
		Order("bed_serial ASC").
		Pluck("bed_serial", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *bedRepository) CountByDepartment(db *gorm.DB, department string) (int64, error) {
	var count int64
	err := db.Model(&entity.Bed{}).Where("department = ?", department).Count(&count).Error
	return count, err
}

// Occupy links a patient to a bed ONLY if the bed is still free.
// Returns affected rows: 1 = success, 0 = the bed was taken meanwhile.
func (r *bedRepository) Occupy(db *gorm.DB, bedSerial string, patientSno int64) (int64, error) {
	result := db.Model(&entity.Bed{}).
		Where("bed_serial = ? AND occupied = ?", bedSerial, entity.OccupiedNo).
		Updates(map[string]interface{}{
			"occupied":    entity.OccupiedYes,
			"patient_sno": patientSno,
		})
	return result.RowsAffected, result.Error
}

func (r *bedRepository) Vacate(db *gorm.DB, bedSerial string) (int64, error) {
	result := db.Model(&entity.Bed{}).
		Where("bed_serial = ?", bedSerial).
		Updates(map[string]interface{}{
			"occupied":    entity.OccupiedNo,
			"patient_sno": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *bedRepository) RelabelDepartment(db *gorm.DB, patientSno int64, department string) (int64, error) {
	result := db.Model(&entity.Bed{}).
		Where("patient_sno = ?", patientSno).
		Update("department", department)
	return result.RowsAffected, result.Error
}

type departmentRow struct {
	Department string
	Total      int64
	Occupied   int64
}

// Summarize counts total and occupied beds per department. Departments
// without beds have no row.
func (r *bedRepository) Summarize(db *gorm.DB) ([]entity.DepartmentSummary, error) {
	var rows []departmentRow
	err := db.Model(&entity.Bed{}).
		Select("department, COUNT(*) AS total, SUM(CASE WHEN occupied = ? THEN 1 ELSE 0 END) AS occupied", string(entity.OccupiedYes)).
		Group("department").
		Order("department ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]entity.DepartmentSummary, len(rows))
	for i, row := range rows {
		summaries[i] = entity.DepartmentSummary{
			Department: row.Department,
			Total:      row.Total,
			Occupied:   row.Occupied,
			Vacant:     row.Total - row.Occupied,
		}
	}
	return summaries, nil
}
