package service

import (
	"errors"
	"fmt"
	"strings"

	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"
	"smartcare/internal/infrastructure/metrics"
	repoImpl "smartcare/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNoBedAvailable     = errors.New("no bed available in department")
	ErrNoBedLinked        = errors.New("no bed linked to patient")
	ErrBedSerialConflict  = errors.New("bed serial already exists")
	ErrAllocationConflict = errors.New("bed was allocated concurrently")
	ErrInvalidBedCount    = errors.New("bed count must be at least 1")
	ErrDepartmentRequired = errors.New("department is required")
)

// BedAllocator reserves and releases beds. Every method runs on the
// transaction it is given; the caller owns commit and rollback.
type BedAllocator struct {
	bedRepo repository.BedRepository
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func NewBedAllocator(bedRepo repository.BedRepository, log *logrus.Logger, m *metrics.Metrics) *BedAllocator {
	return &BedAllocator{
		bedRepo: bedRepo,
		log:     log,
		metrics: m,
	}
}

// Reserve selects and locks the free bed with the lexicographically smallest
// serial in department. Ties never occur: serials are unique.
func (a *BedAllocator) Reserve(tx *gorm.DB, department string) (*entity.Bed, error) {
	bed, err := a.bedRepo.FindFirstFreeForUpdate(tx, department)
	if err != nil {
		a.log.Warnf("Failed to find free bed in %s: %+v", department, err)
		return nil, err
	}
	if bed == nil {
		a.metrics.AllocationFailed(department)
		return nil, ErrNoBedAvailable
	}
	return bed, nil
}

// Assign links a reserved bed to a patient
func (a *BedAllocator) Assign(tx *gorm.DB, bed *entity.Bed, patientSno int64) error {
	affected, err := a.bedRepo.Occupy(tx, bed.BedSerial, patientSno)
	if err != nil {
		a.log.Warnf("Failed to occupy bed %s: %+v", bed.BedSerial, err)
		return err
	}
	if affected == 0 {
		return ErrAllocationConflict
	}

	bed.Occupied = entity.OccupiedYes
	bed.PatientSno = &patientSno
	return nil
}

// Allocate reserves the first free bed in department and links it to the patient
func (a *BedAllocator) Allocate(tx *gorm.DB, department string, patientSno int64) (*entity.Bed, error) {
	bed, err := a.Reserve(tx, department)
	if err != nil {
		return nil, err
	}
	if err := a.Assign(tx, bed, patientSno); err != nil {
		return nil, err
	}
	return bed, nil
}

// Release frees the bed currently linked to the patient
func (a *BedAllocator) Release(tx *gorm.DB, patientSno int64) (*entity.Bed, error) {
	bed, err := a.bedRepo.FindByPatientForUpdate(tx, patientSno)
	if err != nil {
		a.log.Warnf("Failed to find bed of patient %d: %+v", patientSno, err)
		return nil, err
	}
	if bed == nil {
		return nil, ErrNoBedLinked
	}

	if _, err := a.bedRepo.Vacate(tx, bed.BedSerial); err != nil {
		a.log.Warnf("Failed to vacate bed %s: %+v", bed.BedSerial, err)
		return nil, err
	}

	bed.Occupied = entity.OccupiedNo
	bed.PatientSno = nil
	return bed, nil
}

// Provision appends count beds to department. New serials continue after the
// highest index already used by the department code. Any collision with an
// existing serial fails the whole call.
func (a *BedAllocator) Provision(tx *gorm.DB, department string, count int) ([]entity.Bed, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, ErrDepartmentRequired
	}
	if count < 1 {
		return nil, ErrInvalidBedCount
	}

	prefix := entity.BedSerialPrefix(department)
	serials, err := a.bedRepo.FindSerialsWithPrefix(tx, prefix)
	if err != nil {
		a.log.Warnf("Failed to list serials with prefix %s: %+v", prefix, err)
		return nil, err
	}

	next := 1
	for _, serial := range serials {
		if n, ok := entity.BedSerialIndex(serial, prefix); ok && n >= next {
			next = n + 1
		}
	}

	beds := make([]entity.Bed, count)
	candidates := make([]string, count)
	for i := range beds {
		serial := entity.FormatBedSerial(department, next+i)
		candidates[i] = serial
		beds[i] = entity.Bed{
			BedSerial:  serial,
			Department: department,
			Occupied:   entity.OccupiedNo,
		}
	}

	existing, err := a.bedRepo.FindExistingSerials(tx, candidates)
	if err != nil {
		a.log.Warnf("Failed to check bed serials: %+v", err)
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBedSerialConflict, strings.Join(existing, ", "))
	}

	if err := a.bedRepo.CreateBatch(tx, beds); err != nil {
		if repoImpl.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrBedSerialConflict, err)
		}
		a.log.Warnf("Failed to create beds for %s: %+v", department, err)
		return nil, err
	}

	a.log.Infof("Provisioned %d beds in %s (%s to %s)", count, department, candidates[0], candidates[count-1])
	return beds, nil
}

// EnsureDepartments provisions count beds for every department that has none.
// It returns the number of beds created.
func (a *BedAllocator) EnsureDepartments(tx *gorm.DB, departments []string, count int) (int, error) {
	created := 0
	for _, department := range departments {
		existing, err := a.bedRepo.CountByDepartment(tx, department)
		if err != nil {
			return created, err
		}
		if existing > 0 {
			continue
		}
		beds, err := a.Provision(tx, department, count)
		if err != nil {
			return created, err
		}
		created += len(beds)
	}
	return created, nil
}
