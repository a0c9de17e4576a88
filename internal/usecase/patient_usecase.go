package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"smartcare/internal/converter"
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"
	"smartcare/internal/infrastructure/metrics"
	repoImpl "smartcare/internal/repository"
	"smartcare/internal/service"
	"smartcare/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 20
	noBedWarning     = "no bed was linked to the patient"
)

type PatientUsecase interface {
	Admit(ctx context.Context, req *dto.AdmitPatientRequest) (*dto.PatientResponse, error)
	Discharge(ctx context.Context, sno int64) (*dto.DischargeResponse, error)
	Edit(ctx context.Context, sno int64, req *dto.EditPatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, sno int64) (*dto.PatientResponse, error)
	SearchPatients(ctx context.Context, req *dto.SearchPatientsRequest) (*dto.PatientListResponse, error)
}

type patientUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	patientRepo   repository.PatientRepository
	bedRepo       repository.BedRepository
	allocator     *service.BedAllocator
	recordNumbers service.RecordNumberGenerator
	validator     *validator.CustomValidator
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	bedRepo repository.BedRepository,
	allocator *service.BedAllocator,
	recordNumbers service.RecordNumberGenerator,
	validator *validator.CustomValidator,
	m *metrics.Metrics,
) PatientUsecase {
	return &patientUsecase{
		db:            db,
		log:           log,
		patientRepo:   patientRepo,
		bedRepo:       bedRepo,
		allocator:     allocator,
		recordNumbers: recordNumbers,
		validator:     validator,
		metrics:       m,
		now:           time.Now,
	}
}

// Admit creates an Admitted patient and links it to the first free bed of
// its department.
//
// Flow (one transaction):
// 1. Reserve and lock the free bed, failing with ErrNoBedAvailable
// 2. Draw the next medical record number
// 3. Insert the patient
// 4. Link the bed to the patient
func (u *patientUsecase) Admit(ctx context.Context, req *dto.AdmitPatientRequest) (*dto.PatientResponse, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Department = strings.TrimSpace(in.Department)
	in.AdmissionDate = strings.TrimSpace(in.AdmissionDate)
	if err := u.validator.Validate(&in); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	doa := entity.FormatTimestamp(u.now())
	if in.AdmissionDate != "" {
		doa = in.AdmissionDate
	}
	typeOfAdmission := in.TypeOfAdmission
	if typeOfAdmission == "" {
		typeOfAdmission = entity.AdmissionRoutine
	}

	patient := &entity.Patient{
		Doa:             &doa,
		Name:            in.Name,
		Age:             in.Age,
		Gender:          in.Gender,
		Department:      in.Department,
		TypeOfAdmission: typeOfAdmission,
		Outcome:         entity.OutcomeAdmitted,
	}
	if err := applyClinicalFields(patient, &in.ClinicalFields); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, tx.Error
	}
	defer tx.Rollback()

	// Step 1: the department must have room before anything is written
	bed, err := u.allocator.Reserve(tx, patient.Department)
	if err != nil {
		return nil, err
	}

	// Step 2: medical record number
	mrd, err := u.recordNumbers.Next(ctx, tx)
	if err != nil {
		u.log.Warnf("Failed to generate medical record number: %+v", err)
		return nil, err
	}
	patient.MrdNo = mrd

	// Step 3: patient row
	if err := u.patientRepo.Create(tx, patient); err != nil {
		if repoImpl.IsDuplicateKeyError(err) {
			u.log.Warnf("Medical record number %s already taken", mrd)
			return nil, ErrDuplicateMRD
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	// Step 4: link the bed
	if err := u.allocator.Assign(tx, bed, patient.Sno); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit admission: %+v", err)
		return nil, err
	}

	u.metrics.Admitted(patient.Department)
	u.log.Infof("Admitted patient %d (%s) to bed %s", patient.Sno, patient.MrdNo, bed.BedSerial)

	return converter.PatientToResponse(patient, bed.BedSerial), nil
}

// Discharge releases the patient's bed and marks the patient Discharged.
// A patient without a linked bed is still discharged; the result carries a
// warning instead of an error.
func (u *patientUsecase) Discharge(ctx context.Context, sno int64) (*dto.DischargeResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, tx.Error
	}
	defer tx.Rollback()

	patient, err := u.patientRepo.FindBySnoForUpdate(tx, sno)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", sno, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if !patient.IsAdmitted() {
		return nil, ErrPatientNotAdmitted
	}

	result := &dto.DischargeResponse{}
	bed, err := u.allocator.Release(tx, sno)
	switch {
	case errors.Is(err, service.ErrNoBedLinked):
		u.log.Warnf("Discharging patient %d without a linked bed", sno)
		result.Warning = noBedWarning
	case err != nil:
		return nil, err
	default:
		result.ReleasedBed = bed.BedSerial
	}

	patient.Discharge(u.now())
	if err := u.patientRepo.Update(tx, patient); err != nil {
		u.log.Warnf("Failed to update patient %d: %+v", sno, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit discharge: %+v", err)
		return nil, err
	}

	u.metrics.Discharged(bed != nil)
	u.log.Infof("Discharged patient %d (%s)", patient.Sno, patient.MrdNo)

	result.Patient = converter.PatientToResponse(patient, "")
	return result, nil
}

// Edit applies the allow-listed field updates. A department change relabels
// the linked bed in place; an outcome leaving Admitted releases the bed.
func (u *patientUsecase) Edit(ctx context.Context, sno int64, req *dto.EditPatientRequest) (*dto.PatientResponse, error) {
	if err := u.validator.Validate(req); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, tx.Error
	}
	defer tx.Rollback()

	patient, err := u.patientRepo.FindBySnoForUpdate(tx, sno)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", sno, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	wasAdmitted := patient.IsAdmitted()
	oldDepartment := patient.Department

	if err := applyEdit(patient, req); err != nil {
		return nil, err
	}
	patient.RecomputeDurationOfStay()

	if err := u.patientRepo.Update(tx, patient); err != nil {
		u.log.Warnf("Failed to update patient %d: %+v", sno, err)
		return nil, err
	}

	bedSerial := ""
	switch {
	case wasAdmitted && !patient.IsAdmitted():
		if _, err := u.allocator.Release(tx, sno); err != nil {
			if !errors.Is(err, service.ErrNoBedLinked) {
				return nil, err
			}
			u.log.Warnf("Patient %d left Admitted without a linked bed", sno)
		}
	case patient.Department != oldDepartment:
		if _, err := u.bedRepo.RelabelDepartment(tx, sno, patient.Department); err != nil {
			u.log.Warnf("Failed to relabel bed of patient %d: %+v", sno, err)
			return nil, err
		}
	}

	if patient.IsAdmitted() {
		bed, err := u.bedRepo.FindByPatient(tx, sno)
		if err != nil {
			u.log.Warnf("Failed to find bed of patient %d: %+v", sno, err)
			return nil, err
		}
		if bed != nil {
			bedSerial = bed.BedSerial
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit edit: %+v", err)
		return nil, err
	}

	u.log.Infof("Updated patient %d", sno)
	return converter.PatientToResponse(patient, bedSerial), nil
}

func applyEdit(patient *entity.Patient, req *dto.EditPatientRequest) error {
	p := *patient

	if req.Dod != nil {
		p.Dod = optionalText(*req.Dod)
	}
	if req.Department != nil {
		p.Department = strings.TrimSpace(*req.Department)
		if p.Department == "" {
			return newValidationError("department", "department must not be blank")
		}
	}
	if req.TypeOfAdmission != nil {
		p.TypeOfAdmission = *req.TypeOfAdmission
	}
	if req.Outcome != nil {
		p.Outcome = entity.Outcome(*req.Outcome)
	}

	flags := []struct {
		name   string
		raw    *string
		target **string
	}{
		{"smoking", req.Smoking, &p.Smoking},
		{"alcohol", req.Alcohol, &p.Alcohol},
		{"anaemia", req.Anaemia, &p.Anaemia},
		{"heart_failure", req.HeartFailure, &p.HeartFailure},
		{"uti", req.Uti, &p.Uti},
		{"chest_infection", req.ChestInfection, &p.ChestInfection},
	}
	for _, f := range flags {
		if f.raw == nil {
			continue
		}
		v, err := parseFlag(f.name, *f.raw)
		if err != nil {
			return err
		}
		*f.target = v
	}

	labs := []struct {
		name   string
		raw    *string
		target *decimal.NullDecimal
	}{
		{"hb", req.Hb, &p.Hb},
		{"tlc", req.Tlc, &p.Tlc},
		{"platelets", req.Platelets, &p.Platelets},
		{"glucose", req.Glucose, &p.Glucose},
	}
	for _, l := range labs {
		if l.raw == nil {
			continue
		}
		v, err := parseLabValue(l.name, *l.raw)
		if err != nil {
			return err
		}
		*l.target = v
	}

	*patient = p
	return nil
}

// GetPatient returns the patient with its current bed, if any
func (u *patientUsecase) GetPatient(ctx context.Context, sno int64) (*dto.PatientResponse, error) {
	db := u.db.WithContext(ctx)

	patient, err := u.patientRepo.FindBySno(db, sno)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", sno, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	bed, err := u.bedRepo.FindByPatient(db, sno)
	if err != nil {
		u.log.Warnf("Failed to find bed of patient %d: %+v", sno, err)
		return nil, err
	}

	bedSerial := ""
	if bed != nil {
		bedSerial = bed.BedSerial
	}
	return converter.PatientToResponse(patient, bedSerial), nil
}

func (u *patientUsecase) SearchPatients(ctx context.Context, req *dto.SearchPatientsRequest) (*dto.PatientListResponse, error) {
	in := *req
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = defaultPageLimit
	}
	if err := u.validator.Validate(&in); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	filter := &repository.PatientFilter{
		Query:      in.Query,
		Department: strings.TrimSpace(in.Department),
		Outcome:    in.Outcome,
		Limit:      in.Limit,
		Offset:     (in.Page - 1) * in.Limit,
	}
	patients, total, err := u.patientRepo.Search(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    total,
		Page:     in.Page,
		Limit:    in.Limit,
	}, nil
}
