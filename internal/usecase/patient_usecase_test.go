package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
	"smartcare/internal/infrastructure/metrics"
	"smartcare/internal/repository"
	"smartcare/internal/service"
	"smartcare/internal/testutil"
	"smartcare/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type patientFixture struct {
	db        *gorm.DB
	hook      *test.Hook
	allocator *service.BedAllocator
	usecase   *patientUsecase
}

func setupPatientUsecase(t *testing.T) *patientFixture {
	db := testutil.NewTestDB(t)
	log, hook := testutil.NewTestLogger()

	bedRepo := repository.NewBedRepository()
	allocator := service.NewBedAllocator(bedRepo, log, metrics.NewNop())
	uc := NewPatientUsecase(
		db,
		log,
		repository.NewPatientRepository(),
		bedRepo,
		allocator,
		service.NewSequenceRecordNumbers(repository.NewRecordSequenceRepository()),
		validator.NewValidator(),
		metrics.NewNop(),
	).(*patientUsecase)
	uc.now = func() time.Time { return fixedNow }

	return &patientFixture{db: db, hook: hook, allocator: allocator, usecase: uc}
}

func (f *patientFixture) provision(t *testing.T, department string, count int) {
	t.Helper()
	_, err := f.allocator.Provision(f.db, department, count)
	require.NoError(t, err)
}

func (f *patientFixture) admit(t *testing.T, department string) *dto.PatientResponse {
	t.Helper()
	resp, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name:       "Jane Doe",
		Age:        54,
		Gender:     "F",
		Department: department,
	})
	require.NoError(t, err)
	return resp
}

func (f *patientFixture) bedsOf(t *testing.T, department string) []entity.Bed {
	t.Helper()
	beds, err := repository.NewBedRepository().FindAll(f.db, department)
	require.NoError(t, err)
	return beds
}

func (f *patientFixture) countPatients(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.Patient{}).Count(&n).Error)
	return n
}

func TestAdmit_LinksExactlyOneBed(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 3)

	resp, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name:       "  John Smith ",
		Age:        61,
		Gender:     "M",
		Department: "General",
		ClinicalFields: dto.ClinicalFields{
			Smoking: "Yes",
			Hb:      "12.5",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.OutcomeAdmitted), resp.Outcome)
	assert.Equal(t, "MRD-0001", resp.MrdNo)
	assert.Equal(t, "John Smith", resp.Name)
	assert.Equal(t, entity.AdmissionRoutine, resp.TypeOfAdmission)
	assert.Equal(t, "BED-GEN-001", resp.BedSerial)
	require.NotNil(t, resp.Doa)
	assert.Equal(t, "2024-03-10T09:30:00", *resp.Doa)
	require.NotNil(t, resp.Hb)
	assert.Equal(t, 12.5, *resp.Hb)
	require.NotNil(t, resp.Smoking)
	assert.Equal(t, entity.FlagYes, *resp.Smoking)
	assert.Nil(t, resp.Glucose)

	linked := 0
	for _, bed := range f.bedsOf(t, "General") {
		if bed.PatientSno != nil && *bed.PatientSno == resp.Sno {
			linked++
			assert.Equal(t, entity.OccupiedYes, bed.Occupied)
		}
	}
	assert.Equal(t, 1, linked)
}

func TestAdmit_SequentialRecordNumbers(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 2)

	assert.Equal(t, "MRD-0001", f.admit(t, "General").MrdNo)
	assert.Equal(t, "MRD-0002", f.admit(t, "General").MrdNo)
}

func TestAdmit_NoFreeBedChangesNothing(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "ICU", 1)
	first := f.admit(t, "ICU")

	before := f.bedsOf(t, "ICU")

	_, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name: "Late Arrival", Age: 30, Gender: "M", Department: "ICU",
	})
	assert.ErrorIs(t, err, service.ErrNoBedAvailable)

	assert.Equal(t, int64(1), f.countPatients(t))
	after := f.bedsOf(t, "ICU")
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Occupied, after[0].Occupied)
	require.NotNil(t, after[0].PatientSno)
	assert.Equal(t, first.Sno, *after[0].PatientSno)

	// The failed admission does not burn a record number
	f.provision(t, "ICU", 1)
	assert.Equal(t, "MRD-0002", f.admit(t, "ICU").MrdNo)
}

func TestAdmit_UnknownDepartment(t *testing.T) {
	f := setupPatientUsecase(t)

	_, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name: "Jane", Age: 30, Gender: "F", Department: "Nowhere",
	})
	assert.ErrorIs(t, err, service.ErrNoBedAvailable)
	assert.Zero(t, f.countPatients(t))
}

func TestAdmit_ValidationErrors(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)

	tests := []struct {
		name  string
		req   dto.AdmitPatientRequest
		field string
	}{
		{"blank name", dto.AdmitPatientRequest{Name: "   ", Age: 30, Gender: "F", Department: "General"}, "name"},
		{"zero age", dto.AdmitPatientRequest{Name: "Jane", Age: 0, Gender: "F", Department: "General"}, "age"},
		{"negative age", dto.AdmitPatientRequest{Name: "Jane", Age: -4, Gender: "F", Department: "General"}, "age"},
		{"missing gender", dto.AdmitPatientRequest{Name: "Jane", Age: 30, Department: "General"}, "gender"},
		{"missing department", dto.AdmitPatientRequest{Name: "Jane", Age: 30, Gender: "F"}, "department"},
		{"bad admission type", dto.AdmitPatientRequest{Name: "Jane", Age: 30, Gender: "F", Department: "General", TypeOfAdmission: "Walk-in"}, "type_of_admission"},
		{"bad admission date", dto.AdmitPatientRequest{Name: "Jane", Age: 30, Gender: "F", Department: "General", AdmissionDate: "01/02/2024"}, "admission_date"},
		{"non-numeric lab value", dto.AdmitPatientRequest{
			Name: "Jane", Age: 30, Gender: "F", Department: "General",
			ClinicalFields: dto.ClinicalFields{Glucose: "high"},
		}, "glucose"},
		{"bad flag", dto.AdmitPatientRequest{
			Name: "Jane", Age: 30, Gender: "F", Department: "General",
			ClinicalFields: dto.ClinicalFields{Alcohol: "Sometimes"},
		}, "alcohol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.usecase.Admit(context.Background(), &tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	assert.Zero(t, f.countPatients(t))
	assert.Equal(t, entity.OccupiedNo, f.bedsOf(t, "General")[0].Occupied)
}

func TestDischarge_ReleasesBed(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 2)
	admitted := f.admit(t, "General")

	resp, err := f.usecase.Discharge(context.Background(), admitted.Sno)
	require.NoError(t, err)

	assert.Equal(t, "BED-GEN-001", resp.ReleasedBed)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, string(entity.OutcomeDischarged), resp.Patient.Outcome)
	require.NotNil(t, resp.Patient.Dod)
	assert.Equal(t, "2024-03-10T09:30:00", *resp.Patient.Dod)
	require.NotNil(t, resp.Patient.DurationOfStay)
	assert.Equal(t, 0, *resp.Patient.DurationOfStay)

	for _, bed := range f.bedsOf(t, "General") {
		if bed.PatientSno != nil {
			assert.NotEqual(t, admitted.Sno, *bed.PatientSno)
		}
		assert.Equal(t, entity.OccupiedNo, bed.Occupied)
	}
}

func TestDischarge_WithoutLinkedBedWarns(t *testing.T) {
	f := setupPatientUsecase(t)

	// A patient imported while the department was full has no bed
	patient := &entity.Patient{
		MrdNo: "MRD-0099", Name: "No Bed", Age: 50, Gender: "M",
		Department: "General", TypeOfAdmission: entity.AdmissionRoutine,
		Outcome: entity.OutcomeAdmitted,
	}
	require.NoError(t, repository.NewPatientRepository().Create(f.db, patient))

	resp, err := f.usecase.Discharge(context.Background(), patient.Sno)
	require.NoError(t, err)

	assert.Equal(t, noBedWarning, resp.Warning)
	assert.Empty(t, resp.ReleasedBed)
	assert.Equal(t, string(entity.OutcomeDischarged), resp.Patient.Outcome)
	assert.NotNil(t, resp.Patient.Dod)

	warned := false
	for _, entry := range f.hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning to be logged")
}

func TestDischarge_Errors(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)

	_, err := f.usecase.Discharge(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	admitted := f.admit(t, "General")
	_, err = f.usecase.Discharge(context.Background(), admitted.Sno)
	require.NoError(t, err)

	_, err = f.usecase.Discharge(context.Background(), admitted.Sno)
	assert.ErrorIs(t, err, ErrPatientNotAdmitted)
}

func TestEdit_DischargeDateRecomputesStay(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)

	admitted, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name: "Jane", Age: 30, Gender: "F", Department: "General", AdmissionDate: "2024-01-01",
	})
	require.NoError(t, err)

	dod := "2024-01-05"
	resp, err := f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{Dod: &dod})
	require.NoError(t, err)

	require.NotNil(t, resp.DurationOfStay)
	assert.Equal(t, 4, *resp.DurationOfStay)
	assert.Equal(t, "BED-GEN-001", resp.BedSerial)

	// Malformed discharge date leaves the stay unknown
	bad := "soon"
	resp, err = f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{Dod: &bad})
	require.NoError(t, err)
	assert.Nil(t, resp.DurationOfStay)
}

func TestEdit_DepartmentChangeRelabelsBed(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)
	f.provision(t, "ICU", 1)
	admitted := f.admit(t, "General")

	icu := "ICU"
	resp, err := f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{Department: &icu})
	require.NoError(t, err)

	assert.Equal(t, "ICU", resp.Department)
	// Same physical bed, new label
	assert.Equal(t, "BED-GEN-001", resp.BedSerial)

	icuBeds := f.bedsOf(t, "ICU")
	require.Len(t, icuBeds, 2)
	assert.Equal(t, "BED-GEN-001", icuBeds[0].BedSerial)
	assert.Equal(t, entity.OccupiedYes, icuBeds[0].Occupied)
	assert.Equal(t, entity.OccupiedNo, icuBeds[1].Occupied)
	assert.Empty(t, f.bedsOf(t, "General"))
}

func TestEdit_OutcomeLeavingAdmittedReleasesBed(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)
	admitted := f.admit(t, "General")

	deceased := string(entity.OutcomeDeceased)
	resp, err := f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{Outcome: &deceased})
	require.NoError(t, err)

	assert.Equal(t, deceased, resp.Outcome)
	assert.Empty(t, resp.BedSerial)

	beds := f.bedsOf(t, "General")
	assert.Equal(t, entity.OccupiedNo, beds[0].Occupied)
	assert.Nil(t, beds[0].PatientSno)
}

func TestEdit_ClinicalFields(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)

	admitted, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name: "Jane", Age: 30, Gender: "F", Department: "General",
		ClinicalFields: dto.ClinicalFields{Hb: "11", Uti: "No"},
	})
	require.NoError(t, err)

	empty := ""
	tlc := "9.4"
	resp, err := f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{
		Hb:  &empty,
		Tlc: &tlc,
		Uti: &empty,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Hb)
	assert.Nil(t, resp.Uti)
	require.NotNil(t, resp.Tlc)
	assert.Equal(t, 9.4, *resp.Tlc)

	bad := "n/a"
	_, err = f.usecase.Edit(context.Background(), admitted.Sno, &dto.EditPatientRequest{Platelets: &bad})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "platelets")

	stored, err := f.usecase.GetPatient(context.Background(), admitted.Sno)
	require.NoError(t, err)
	assert.Nil(t, stored.Platelets)
	require.NotNil(t, stored.Tlc)
}

func TestEdit_NotFound(t *testing.T) {
	f := setupPatientUsecase(t)

	dod := "2024-01-05"
	_, err := f.usecase.Edit(context.Background(), 12, &dto.EditPatientRequest{Dod: &dod})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestGetPatient(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 1)
	admitted := f.admit(t, "General")

	resp, err := f.usecase.GetPatient(context.Background(), admitted.Sno)
	require.NoError(t, err)
	assert.Equal(t, admitted.MrdNo, resp.MrdNo)
	assert.Equal(t, "BED-GEN-001", resp.BedSerial)

	_, err = f.usecase.GetPatient(context.Background(), admitted.Sno+100)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestSearchPatients(t *testing.T) {
	f := setupPatientUsecase(t)
	f.provision(t, "General", 3)
	f.provision(t, "ICU", 2)

	for range 3 {
		f.admit(t, "General")
	}
	icu := f.admit(t, "ICU")
	_, err := f.usecase.Discharge(context.Background(), icu.Sno)
	require.NoError(t, err)

	all, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, defaultPageLimit, all.Limit)

	page, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	require.Len(t, page.Patients, 1)
	assert.Equal(t, "MRD-0004", page.Patients[0].MrdNo)

	general, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Department: "General"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), general.Total)

	discharged, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Outcome: "Discharged"})
	require.NoError(t, err)
	require.Len(t, discharged.Patients, 1)
	assert.Equal(t, icu.Sno, discharged.Patients[0].Sno)

	byMRD, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Query: "mrd-0002"})
	require.NoError(t, err)
	require.Len(t, byMRD.Patients, 1)
	assert.Equal(t, "MRD-0002", byMRD.Patients[0].MrdNo)

	_, err = f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Outcome: "Missing"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSearchPatients_PageOutOfRange(t *testing.T) {
	f := setupPatientUsecase(t)

	_, err := f.usecase.SearchPatients(context.Background(), &dto.SearchPatientsRequest{Page: math.MaxInt, Limit: 500})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Page")
}
