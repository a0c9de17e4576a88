package usecase

import (
	"context"
	"testing"
	"time"

	"smartcare/internal/domain/entity"
	"smartcare/internal/infrastructure/metrics"
	"smartcare/internal/repository"
	"smartcare/internal/service"
	"smartcare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOccupancy(t *testing.T) (*gorm.DB, *service.BedAllocator, *occupancyUsecase) {
	db := testutil.NewTestDB(t)
	log, _ := testutil.NewTestLogger()

	bedRepo := repository.NewBedRepository()
	uc := NewOccupancyUsecase(
		db,
		log,
		repository.NewPatientRepository(),
		service.NewOccupancyAggregator(db, bedRepo, log),
	).(*occupancyUsecase)
	uc.now = func() time.Time { return fixedNow }

	return db, service.NewBedAllocator(bedRepo, log, metrics.NewNop()), uc
}

func seedPatient(t *testing.T, db *gorm.DB, mrd, gender, doa, dod string) *entity.Patient {
	t.Helper()
	p := &entity.Patient{
		MrdNo:           mrd,
		Name:            "Patient " + mrd,
		Age:             50,
		Gender:          gender,
		Department:      "General",
		TypeOfAdmission: entity.AdmissionRoutine,
		Outcome:         entity.OutcomeAdmitted,
		Doa:             optionalText(doa),
		Dod:             optionalText(dod),
	}
	if p.Dod != nil {
		p.Outcome = entity.OutcomeDischarged
	}
	p.RecomputeDurationOfStay()
	require.NoError(t, repository.NewPatientRepository().Create(db, p))
	return p
}

func TestOccupancySummarize(t *testing.T) {
	db, allocator, uc := setupOccupancy(t)

	_, err := allocator.Provision(db, "ICU", 3)
	require.NoError(t, err)
	p := seedPatient(t, db, "MRD-0001", "F", "2024-03-10", "")
	_, err = allocator.Allocate(db, "ICU", p.Sno)
	require.NoError(t, err)

	resp, err := uc.Summarize(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Departments, 1)

	icu := resp.Departments[0]
	assert.Equal(t, "ICU", icu.Department)
	assert.Equal(t, int64(3), icu.TotalBeds)
	assert.Equal(t, int64(1), icu.Occupied)
	assert.Equal(t, int64(2), icu.Vacant)
	assert.Equal(t, 33.3, icu.OccupancyRate)
}

func TestOccupancyOverview(t *testing.T) {
	db, allocator, uc := setupOccupancy(t)

	_, err := allocator.Provision(db, "General", 2)
	require.NoError(t, err)

	today := seedPatient(t, db, "MRD-0001", "F", "2024-03-10T08:00:00", "")
	seedPatient(t, db, "MRD-0002", "M", "2024-03-05", "2024-03-10T07:00:00")
	seedPatient(t, db, "MRD-0003", "F", "2024-02-01", "2024-02-04")
	seedPatient(t, db, "MRD-0004", "M", "2024-03-04", "")
	_, err = allocator.Allocate(db, "General", today.Sno)
	require.NoError(t, err)

	resp, err := uc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.TotalBeds)
	assert.Equal(t, int64(1), resp.OccupiedBeds)
	assert.Equal(t, int64(1), resp.AdmissionsToday)
	assert.Equal(t, int64(1), resp.DischargesToday)
	// Stays of 5 and 3 days
	assert.Equal(t, 4.0, resp.AverageStay)

	require.Len(t, resp.LastSevenDays, 7)
	assert.Equal(t, "2024-03-04", resp.LastSevenDays[0].Date)
	assert.Equal(t, int64(1), resp.LastSevenDays[0].Admissions)
	assert.Equal(t, "2024-03-05", resp.LastSevenDays[1].Date)
	assert.Equal(t, int64(1), resp.LastSevenDays[1].Admissions)
	assert.Equal(t, int64(0), resp.LastSevenDays[3].Admissions)

	last := resp.LastSevenDays[6]
	assert.Equal(t, "2024-03-10", last.Date)
	assert.Equal(t, int64(1), last.Admissions)
	assert.Equal(t, int64(1), last.Discharges)
}

func TestOccupancyOverview_EmptyStore(t *testing.T) {
	_, _, uc := setupOccupancy(t)

	resp, err := uc.Overview(context.Background())
	require.NoError(t, err)

	assert.Zero(t, resp.TotalBeds)
	assert.Zero(t, resp.AverageStay)
	assert.Len(t, resp.LastSevenDays, 7)
}

func TestOccupancyDistribution(t *testing.T) {
	db, _, uc := setupOccupancy(t)

	seedPatient(t, db, "MRD-0001", "F", "", "")
	seedPatient(t, db, "MRD-0002", "M", "", "")
	seedPatient(t, db, "MRD-0003", "F", "", "")
	seedPatient(t, db, "MRD-0004", "", "", "")

	resp, err := uc.Distribution(context.Background(), "gender")
	require.NoError(t, err)

	assert.Equal(t, "gender", resp.Field)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "F", resp.Categories[0].Category)
	assert.Equal(t, int64(2), resp.Categories[0].Count)
	assert.Equal(t, "M", resp.Categories[1].Category)
	assert.Equal(t, int64(1), resp.Categories[1].Count)
}

func TestOccupancyDistribution_UnknownField(t *testing.T) {
	_, _, uc := setupOccupancy(t)

	for _, field := range []string{"name", "mrd_no", "gender; DROP TABLE patients", ""} {
		_, err := uc.Distribution(context.Background(), field)
		assert.ErrorIs(t, err, ErrUnknownField, field)
	}
}
