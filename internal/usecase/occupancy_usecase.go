package usecase

import (
	"context"
	"time"

	"smartcare/internal/converter"
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"
	"smartcare/internal/service"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	distributionLimit = 15
	movementDays      = 7
)

// distributionColumns are the patient columns that may be charted
var distributionColumns = map[string]bool{
	"gender":            true,
	"department":        true,
	"type_of_admission": true,
	"outcome":           true,
	"smoking":           true,
	"alcohol":           true,
	"anaemia":           true,
	"heart_failure":     true,
	"uti":               true,
	"chest_infection":   true,
}

type OccupancyUsecase interface {
	Summarize(ctx context.Context) (*dto.OccupancyResponse, error)
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
	Distribution(ctx context.Context, field string) (*dto.DistributionResponse, error)
}

type occupancyUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	aggregator  *service.OccupancyAggregator
	now         func() time.Time
}

func NewOccupancyUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	aggregator *service.OccupancyAggregator,
) OccupancyUsecase {
	return &occupancyUsecase{
		db:          db,
		log:         log,
		patientRepo: patientRepo,
		aggregator:  aggregator,
		now:         time.Now,
	}
}

// Summarize returns per-department bed counts and occupancy rates
func (u *occupancyUsecase) Summarize(ctx context.Context) (*dto.OccupancyResponse, error) {
	summaries, err := u.aggregator.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return converter.DepartmentSummariesToResponse(summaries), nil
}

// Overview gathers the dashboard headline figures. The queries are
// independent and run concurrently.
func (u *occupancyUsecase) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	now := u.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(movementDays - 1))

	var (
		summaries  []entity.DepartmentSummary
		admitted   int64
		discharged int64
		average    float64
		movements  []entity.Patient
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaries, err = u.aggregator.Summarize(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		admitted, err = u.patientRepo.CountAdmittedOn(u.db.WithContext(gctx), today)
		return err
	})
	g.Go(func() error {
		var err error
		discharged, err = u.patientRepo.CountDischargedOn(u.db.WithContext(gctx), today)
		return err
	})
	g.Go(func() error {
		var err error
		average, err = u.patientRepo.AverageDurationOfStay(u.db.WithContext(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		movements, err = u.patientRepo.FindMovementsSince(u.db.WithContext(gctx), since)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to build dashboard overview: %+v", err)
		return nil, err
	}

	overview := &entity.HospitalOverview{
		AdmissionsToday: admitted,
		DischargesToday: discharged,
		AverageStay:     decimal.NewFromFloat(average).Round(1).InexactFloat64(),
		LastSevenDays:   dailyMovements(movements, since, movementDays),
	}
	for _, s := range summaries {
		overview.TotalBeds += s.Total
		overview.OccupiedBeds += s.Occupied
	}

	return converter.OverviewToResponse(overview), nil
}

// dailyMovements buckets admission and discharge dates into days calendar
// days starting at since.
func dailyMovements(patients []entity.Patient, since time.Time, days int) []entity.DailyMovement {
	series := make([]entity.DailyMovement, days)
	index := make(map[time.Time]int, days)
	for i := range series {
		day := since.AddDate(0, 0, i)
		series[i].Date = day
		index[day] = i
	}

	for _, p := range patients {
		if p.Doa != nil {
			if day, ok := entity.ParseCalendarDate(*p.Doa); ok {
				if i, ok := index[day]; ok {
					series[i].Admissions++
				}
			}
		}
		if p.Dod != nil {
			if day, ok := entity.ParseCalendarDate(*p.Dod); ok {
				if i, ok := index[day]; ok {
					series[i].Discharges++
				}
			}
		}
	}
	return series
}

// Distribution counts patients per value of an allow-listed column, largest
// groups first.
func (u *occupancyUsecase) Distribution(ctx context.Context, field string) (*dto.DistributionResponse, error) {
	if !distributionColumns[field] {
		return nil, ErrUnknownField
	}

	counts, err := u.patientRepo.CountByColumn(u.db.WithContext(ctx), field, distributionLimit)
	if err != nil {
		u.log.Warnf("Failed to count patients by %s: %+v", field, err)
		return nil, err
	}
	return converter.DistributionToResponse(field, counts), nil
}
