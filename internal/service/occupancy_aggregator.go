package service

import (
	"context"

	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OccupancyAggregator computes department summaries straight from the beds
// table. Nothing is cached.
type OccupancyAggregator struct {
	db      *gorm.DB
	bedRepo repository.BedRepository
	log     *logrus.Logger
}

func NewOccupancyAggregator(db *gorm.DB, bedRepo repository.BedRepository, log *logrus.Logger) *OccupancyAggregator {
	return &OccupancyAggregator{
		db:      db,
		bedRepo: bedRepo,
		log:     log,
	}
}

func (a *OccupancyAggregator) Summarize(ctx context.Context) ([]entity.DepartmentSummary, error) {
	summaries, err := a.bedRepo.Summarize(a.db.WithContext(ctx))
	if err != nil {
		a.log.Warnf("Failed to summarize occupancy: %+v", err)
		return nil, err
	}
	for i := range summaries {
		summaries[i].OccupancyRate = OccupancyRate(summaries[i].Occupied, summaries[i].Total)
	}
	return summaries, nil
}

// OccupancyRate returns occupied/total*100 rounded to one decimal place, or 0
// for a department without beds.
func OccupancyRate(occupied, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(occupied).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(1).
		InexactFloat64()
}
