package usecase

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"
	"smartcare/internal/infrastructure/metrics"
	"smartcare/internal/infrastructure/spreadsheet"
	"smartcare/internal/service"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PatientColumns is the column order shared by import and export
var PatientColumns = []string{
	"sno", "mrd_no", "doa", "dod", "name", "age", "gender", "department",
	"type_of_admission", "duration_of_stay", "outcome", "smoking", "alcohol",
	"hb", "tlc", "platelets", "glucose", "anaemia", "heart_failure", "uti",
	"chest_infection",
}

const exportSheetName = "Patients"

type PatientImportUsecase interface {
	ImportBulk(ctx context.Context, rows []dto.ImportRow) (*dto.ImportResult, error)
	ImportFile(ctx context.Context, r io.Reader, filename string) (*dto.ImportResult, error)
	ExportPatients(ctx context.Context) ([]byte, error)
}

type patientImportUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	patientRepo   repository.PatientRepository
	allocator     *service.BedAllocator
	recordNumbers service.RecordNumberGenerator
	metrics       *metrics.Metrics
}

func NewPatientImportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	allocator *service.BedAllocator,
	recordNumbers service.RecordNumberGenerator,
	m *metrics.Metrics,
) PatientImportUsecase {
	return &patientImportUsecase{
		db:            db,
		log:           log,
		patientRepo:   patientRepo,
		allocator:     allocator,
		recordNumbers: recordNumbers,
		metrics:       m,
	}
}

// ImportFile reads a .csv or .xlsx file and imports its rows
func (u *patientImportUsecase) ImportFile(ctx context.Context, r io.Reader, filename string) (*dto.ImportResult, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			return nil, ErrUnsupportedFormat
		}
		u.log.Warnf("Failed to read import file %s: %+v", filename, err)
		return nil, err
	}

	importRows := make([]dto.ImportRow, len(rows))
	for i, row := range rows {
		importRows[i] = dto.ImportRow(row)
	}
	return u.ImportBulk(ctx, importRows)
}

// ImportBulk imports rows one transaction at a time. A row whose MRD already
// exists is skipped without touching any bed. Admitted rows get the first
// free bed of their department when one exists. A malformed row is reported
// and the batch continues.
func (u *patientImportUsecase) ImportBulk(ctx context.Context, rows []dto.ImportRow) (*dto.ImportResult, error) {
	result := &dto.ImportResult{
		Total:  len(rows),
		Failed: []dto.ImportRowError{},
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rowNum := i + 1
		patient, err := rowToPatient(row)
		if err != nil {
			result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, MrdNo: row["mrd_no"], Reason: err.Error()})
			u.metrics.ImportRow(metrics.ImportFailed)
			continue
		}

		outcome, err := u.importRow(ctx, patient)
		if err != nil {
			u.log.Warnf("Failed to import row %d: %+v", rowNum, err)
			result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, MrdNo: patient.MrdNo, Reason: err.Error()})
			u.metrics.ImportRow(metrics.ImportFailed)
			continue
		}

		switch outcome {
		case rowSkipped:
			result.Skipped++
			u.metrics.ImportRow(metrics.ImportSkipped)
			continue
		case rowBedAssigned:
			result.BedsAssigned++
		case rowUnassigned:
			result.Unassigned++
		}
		result.Imported++
		u.metrics.ImportRow(metrics.ImportImported)
	}

	u.log.Infof("Import finished: %d rows, %d imported, %d skipped, %d failed",
		result.Total, result.Imported, result.Skipped, len(result.Failed))
	return result, nil
}

type rowOutcome int

const (
	rowSkipped rowOutcome = iota
	rowBedAssigned
	rowUnassigned
	rowNoBedNeeded
)

func (u *patientImportUsecase) importRow(ctx context.Context, patient *entity.Patient) (rowOutcome, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return rowSkipped, tx.Error
	}
	defer tx.Rollback()

	if patient.MrdNo == "" {
		mrd, err := u.recordNumbers.Next(ctx, tx)
		if err != nil {
			return rowSkipped, err
		}
		patient.MrdNo = mrd
	} else if err := u.recordNumbers.Observe(ctx, tx, patient.MrdNo); err != nil {
		return rowSkipped, err
	}

	created, err := u.patientRepo.CreateIfAbsent(tx, patient)
	if err != nil {
		return rowSkipped, err
	}
	if !created {
		return rowSkipped, nil
	}

	outcome := rowNoBedNeeded
	if patient.IsAdmitted() {
		outcome = rowBedAssigned
		if _, err := u.allocator.Allocate(tx, patient.Department, patient.Sno); err != nil {
			if !errors.Is(err, service.ErrNoBedAvailable) {
				return rowSkipped, err
			}
			outcome = rowUnassigned
		}
	}

	if err := tx.Commit().Error; err != nil {
		return rowSkipped, err
	}
	return outcome, nil
}

// rowToPatient parses one import row. Absent optional fields stay null,
// type_of_admission defaults to Routine and a missing outcome is derived
// from the discharge date.
func rowToPatient(row dto.ImportRow) (*entity.Patient, error) {
	get := func(key string) string { return strings.TrimSpace(row[key]) }

	patient := &entity.Patient{
		MrdNo:           get("mrd_no"),
		Doa:             optionalText(get("doa")),
		Dod:             optionalText(get("dod")),
		Name:            get("name"),
		Gender:          get("gender"),
		Department:      get("department"),
		TypeOfAdmission: get("type_of_admission"),
	}

	if raw := get("age"); raw != "" {
		age, err := parseAge(raw)
		if err != nil {
			return nil, err
		}
		patient.Age = age
	}

	if patient.TypeOfAdmission == "" {
		patient.TypeOfAdmission = entity.AdmissionRoutine
	}

	switch raw := get("outcome"); {
	case raw != "":
		outcome, ok := normalizeOutcome(raw)
		if !ok {
			return nil, newValidationError("outcome", "outcome must be one of: Admitted Discharged Deceased")
		}
		patient.Outcome = outcome
	case patient.Dod == nil:
		patient.Outcome = entity.OutcomeAdmitted
	default:
		patient.Outcome = entity.OutcomeDischarged
	}

	clinical := dto.ClinicalFields{
		Smoking:        get("smoking"),
		Alcohol:        get("alcohol"),
		Hb:             get("hb"),
		Tlc:            get("tlc"),
		Platelets:      get("platelets"),
		Glucose:        get("glucose"),
		Anaemia:        get("anaemia"),
		HeartFailure:   get("heart_failure"),
		Uti:            get("uti"),
		ChestInfection: get("chest_infection"),
	}
	if err := applyClinicalFields(patient, &clinical); err != nil {
		return nil, err
	}

	patient.RecomputeDurationOfStay()
	return patient, nil
}

// parseAge accepts whole numbers, including spreadsheet renderings like "42.0"
func parseAge(raw string) (int, error) {
	if age, err := strconv.Atoi(raw); err == nil {
		return age, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return 0, newValidationError("age", "age must be a whole number")
	}
	return int(d.IntPart()), nil
}

func normalizeOutcome(raw string) (entity.Outcome, bool) {
	for _, o := range []entity.Outcome{entity.OutcomeAdmitted, entity.OutcomeDischarged, entity.OutcomeDeceased} {
		if strings.EqualFold(raw, string(o)) {
			return o, true
		}
	}
	return "", false
}

// ExportPatients renders every patient as an .xlsx workbook with the import
// columns.
func (u *patientImportUsecase) ExportPatients(ctx context.Context) ([]byte, error) {
	patients, err := u.patientRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find patients: %+v", err)
		return nil, err
	}

	rows := make([][]any, len(patients))
	for i := range patients {
		rows[i] = patientToRow(&patients[i])
	}

	data, err := spreadsheet.WriteXLSX(exportSheetName, PatientColumns, rows)
	if err != nil {
		u.log.Warnf("Failed to render patient export: %+v", err)
		return nil, err
	}
	return data, nil
}

func patientToRow(p *entity.Patient) []any {
	text := func(s *string) any {
		if s == nil {
			return ""
		}
		return *s
	}
	number := func(d decimal.NullDecimal) any {
		if !d.Valid {
			return ""
		}
		return d.Decimal.InexactFloat64()
	}
	var duration any = ""
	if p.DurationOfStay != nil {
		duration = *p.DurationOfStay
	}

	return []any{
		p.Sno, p.MrdNo, text(p.Doa), text(p.Dod), p.Name, p.Age, p.Gender, p.Department,
		p.TypeOfAdmission, duration, string(p.Outcome), text(p.Smoking), text(p.Alcohol),
		number(p.Hb), number(p.Tlc), number(p.Platelets), number(p.Glucose),
		text(p.Anaemia), text(p.HeartFailure), text(p.Uti), text(p.ChestInfection),
	}
}
