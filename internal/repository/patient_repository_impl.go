package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"smartcare/internal/domain/entity"
	domainRepo "smartcare/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(db *gorm.DB, patient *entity.Patient) error {
	return db.Create(patient).Error
}

// CreateIfAbsent inserts the patient unless its MRD already exists.
// Returns false when the row was skipped.
func (r *patientRepository) CreateIfAbsent(db *gorm.DB, patient *entity.Patient) (bool, error) {
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mrd_no"}},
		DoNothing: true,
	}).Create(patient)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *patientRepository) FindBySno(db *gorm.DB, sno int64) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("sno = ?", sno).Take(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindBySnoForUpdate(db *gorm.DB, sno int64) (*entity.Patient, error) {
	return r.FindBySno(lockForUpdate(db, false), sno)
}

func (r *patientRepository) FindAll(db *gorm.DB) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := db.Order("sno ASC").Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func applyPatientFilter(db *gorm.DB, filter *domainRepo.PatientFilter) *gorm.DB {
	query := db.Model(&entity.Patient{})
	if filter == nil {
		return query
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(mrd_no) LIKE ? OR CAST(sno AS TEXT) LIKE ? OR LOWER(department) LIKE ?",
			like, like, like,
		)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}
	return query
}

// Search returns one page of matching patients and the total match count
func (r *patientRepository) Search(db *gorm.DB, filter *domainRepo.PatientFilter) ([]entity.Patient, int64, error) {
	var total int64
	if err := applyPatientFilter(db, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyPatientFilter(db, filter).Order("sno ASC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var patients []entity.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *patientRepository) Update(db *gorm.DB, patient *entity.Patient) error {
	return db.Save(patient).Error
}

func (r *patientRepository) CountAdmittedOn(db *gorm.DB, day time.Time) (int64, error) {
	var count int64
	err := db.Model(&entity.Patient{}).
		Where("doa LIKE ?", day.Format(entity.DateLayout)+"%").
		Count(&count).Error
	return count, err
}

func (r *patientRepository) CountDischargedOn(db *gorm.DB, day time.Time) (int64, error) {
	var count int64
	err := db.Model(&entity.Patient{}).
		Where("dod LIKE ?", day.Format(entity.DateLayout)+"%").
		Count(&count).Error
	return count, err
}

// FindMovementsSince loads the admission and discharge dates of every patient
// admitted or discharged on or after since. ISO strings compare in date order.
func (r *patientRepository) FindMovementsSince(db *gorm.DB, since time.Time) ([]entity.Patient, error) {
	bound := since.Format(entity.DateLayout)
	var patients []entity.Patient
	err := db.Select("sno", "doa", "dod").
		Where("doa >= ? OR dod >= ?", bound, bound).
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) AverageDurationOfStay(db *gorm.DB) (float64, error) {
	var avg sql.NullFloat64
	err := db.Model(&entity.Patient{}).
		Select("AVG(duration_of_stay)").
		Where("duration_of_stay IS NOT NULL").
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

type categoryRow struct {
	Category string
	Total    int64
}

// CountByColumn groups patients by column. column must come from a fixed
// allow-list; it is interpolated into the query.
func (r *patientRepository) CountByColumn(db *gorm.DB, column string, limit int) ([]entity.CategoryCount, error) {
	var rows []categoryRow
	err := db.Model(&entity.Patient{}).
		Select(column + " AS category, COUNT(*) AS total").
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Group(column).
		Order("total DESC, category ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]entity.CategoryCount, len(rows))
	for i, row := range rows {
		counts[i] = entity.CategoryCount{Category: row.Category, Count: row.Total}
	}
	return counts, nil
}
