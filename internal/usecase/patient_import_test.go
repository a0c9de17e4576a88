package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
	"smartcare/internal/infrastructure/metrics"
	"smartcare/internal/infrastructure/spreadsheet"
	"smartcare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImport(t *testing.T) (*patientFixture, PatientImportUsecase) {
	f := setupPatientUsecase(t)
	importUC := NewPatientImportUsecase(
		f.db,
		f.usecase.log,
		repository.NewPatientRepository(),
		f.allocator,
		f.usecase.recordNumbers,
		metrics.NewNop(),
	)
	return f, importUC
}

func (f *patientFixture) patientByMRD(t *testing.T, mrd string) *entity.Patient {
	t.Helper()
	var p entity.Patient
	require.NoError(t, f.db.Where("mrd_no = ?", mrd).Take(&p).Error)
	return &p
}

func TestImportBulk_DerivesStayAndDefaultAdmissionType(t *testing.T) {
	f, importUC := setupImport(t)

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{{
		"mrd_no":     "MRD-0500",
		"doa":        "2024-02-01",
		"dod":        "2024-02-03",
		"name":       "Imported",
		"age":        "67",
		"gender":     "M",
		"department": "General",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Failed)

	p := f.patientByMRD(t, "MRD-0500")
	require.NotNil(t, p.DurationOfStay)
	assert.Equal(t, 2, *p.DurationOfStay)
	assert.Equal(t, entity.AdmissionRoutine, p.TypeOfAdmission)
	// Discharge date without an outcome means Discharged
	assert.Equal(t, entity.OutcomeDischarged, p.Outcome)
}

func TestImportBulk_OutcomeAndClinicalParsing(t *testing.T) {
	f, importUC := setupImport(t)

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{
		{"mrd_no": "MRD-0001", "name": "A", "age": "42.0", "gender": "F", "department": "ICU",
			"outcome": "deceased", "smoking": "y", "hb": "10.25", "platelets": ""},
		{"mrd_no": "MRD-0002", "name": "B", "age": "30", "gender": "M", "department": "ICU",
			"doa": "2024-01-01", "type_of_admission": "Emergency"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	a := f.patientByMRD(t, "MRD-0001")
	assert.Equal(t, 42, a.Age)
	assert.Equal(t, entity.OutcomeDeceased, a.Outcome)
	require.NotNil(t, a.Smoking)
	assert.Equal(t, entity.FlagYes, *a.Smoking)
	require.True(t, a.Hb.Valid)
	assert.Equal(t, "10.25", a.Hb.Decimal.String())
	assert.False(t, a.Platelets.Valid)

	b := f.patientByMRD(t, "MRD-0002")
	assert.Equal(t, entity.OutcomeAdmitted, b.Outcome)
	assert.Equal(t, entity.AdmissionEmergency, b.TypeOfAdmission)
	assert.Nil(t, b.DurationOfStay)
}

func TestImportBulk_AssignsBedsWhenAvailable(t *testing.T) {
	f, importUC := setupImport(t)
	f.provision(t, "General", 1)

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{
		{"mrd_no": "MRD-0001", "name": "A", "age": "50", "gender": "F", "department": "General"},
		{"mrd_no": "MRD-0002", "name": "B", "age": "51", "gender": "M", "department": "General"},
		{"mrd_no": "MRD-0003", "name": "C", "age": "52", "gender": "M", "department": "General",
			"dod": "2024-01-02", "outcome": "Discharged"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.BedsAssigned)
	// The second admitted row finds the department full
	assert.Equal(t, 1, result.Unassigned)
	assert.Empty(t, result.Failed)

	beds := f.bedsOf(t, "General")
	require.Len(t, beds, 1)
	require.NotNil(t, beds[0].PatientSno)
	assert.Equal(t, f.patientByMRD(t, "MRD-0001").Sno, *beds[0].PatientSno)
}

func TestImportBulk_DuplicateMRDIsSkipped(t *testing.T) {
	f, importUC := setupImport(t)
	f.provision(t, "General", 2)
	existing := f.admit(t, "General")

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{
		{"mrd_no": existing.MrdNo, "name": "Someone Else", "age": "20", "gender": "M", "department": "General"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Imported)
	assert.Zero(t, result.BedsAssigned)

	p := f.patientByMRD(t, existing.MrdNo)
	assert.Equal(t, "Jane Doe", p.Name)

	occupied := 0
	for _, bed := range f.bedsOf(t, "General") {
		if bed.IsOccupied() {
			occupied++
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestImportBulk_MalformedRowDoesNotStopBatch(t *testing.T) {
	f, importUC := setupImport(t)

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{
		{"mrd_no": "MRD-0001", "name": "Bad Age", "age": "forty", "gender": "F", "department": "General"},
		{"mrd_no": "MRD-0002", "name": "Bad Lab", "age": "40", "gender": "F", "department": "General", "glucose": "high"},
		{"mrd_no": "MRD-0003", "name": "Bad Outcome", "age": "40", "gender": "F", "department": "General", "outcome": "Unknown"},
		{"mrd_no": "MRD-0004", "name": "Fine", "age": "40", "gender": "F", "department": "General"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Failed, 3)
	assert.Equal(t, 1, result.Failed[0].Row)
	assert.Equal(t, "MRD-0001", result.Failed[0].MrdNo)
	assert.Contains(t, result.Failed[1].Reason, "glucose")
	assert.Equal(t, 3, result.Failed[2].Row)

	assert.Equal(t, int64(1), f.countPatients(t))
}

func TestImportBulk_KeepsRecordNumbersAhead(t *testing.T) {
	f, importUC := setupImport(t)
	f.provision(t, "General", 2)

	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{
		{"mrd_no": "MRD-0010", "name": "Old", "age": "70", "gender": "M", "department": "Archive", "dod": "2023-05-01"},
		{"name": "No MRD", "age": "33", "gender": "F", "department": "Archive", "dod": "2023-05-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	generated := f.patientByMRD(t, "MRD-0011")
	assert.Equal(t, "No MRD", generated.Name)

	assert.Equal(t, "MRD-0012", f.admit(t, "General").MrdNo)
}

func TestImportFile_CSV(t *testing.T) {
	f, importUC := setupImport(t)
	f.provision(t, "ICU", 1)

	csv := "\ufeffMRD No,DOA,DOD,Name,Age,Gender,Department,Outcome\n" +
		"MRD-0001,2024-02-01,2024-02-03,Ann,40,F,ICU,Discharged\n" +
		"MRD-0002,2024-02-04,,Bob,55,M,ICU,\n" +
		",,,,,,,\n"

	result, err := importUC.ImportFile(context.Background(), strings.NewReader(csv), "patients.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.BedsAssigned)

	bob := f.patientByMRD(t, "MRD-0002")
	assert.Equal(t, entity.OutcomeAdmitted, bob.Outcome)
	assert.Equal(t, "ICU", bob.Department)
}

func TestImportFile_UnsupportedFormat(t *testing.T) {
	_, importUC := setupImport(t)

	_, err := importUC.ImportFile(context.Background(), strings.NewReader("{}"), "patients.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportPatients_RoundTripsThroughImport(t *testing.T) {
	f, importUC := setupImport(t)
	f.provision(t, "General", 1)

	_, err := f.usecase.Admit(context.Background(), &dto.AdmitPatientRequest{
		Name: "Exported", Age: 45, Gender: "F", Department: "General", AdmissionDate: "2024-01-01",
		ClinicalFields: dto.ClinicalFields{Glucose: "105.5", HeartFailure: "No"},
	})
	require.NoError(t, err)

	data, err := importUC.ExportPatients(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	rows, err := spreadsheet.ReadRows(bytes.NewReader(data), "export.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "MRD-0001", row["mrd_no"])
	assert.Equal(t, "Exported", row["name"])
	assert.Equal(t, "2024-01-01", row["doa"])
	assert.Equal(t, "Admitted", row["outcome"])
	assert.Equal(t, "105.5", row["glucose"])
	assert.Equal(t, "No", row["heart_failure"])
	assert.Empty(t, row["dod"])

	// Re-importing the export is a no-op
	result, err := importUC.ImportBulk(context.Background(), []dto.ImportRow{dto.ImportRow(row)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
}
