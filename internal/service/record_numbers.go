package service

import (
	"context"

	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"

	"gorm.io/gorm"
)

// RecordNumberGenerator hands out medical record numbers
type RecordNumberGenerator interface {
	// Next returns a fresh MRD. tx is the admission transaction.
	Next(ctx context.Context, tx *gorm.DB) (string, error)
	// Observe records an MRD created elsewhere (e.g. imported) so Next never
	// returns it.
	Observe(ctx context.Context, tx *gorm.DB, mrd string) error
}

// SequenceRecordNumbers draws numbers from the record_sequences table inside
// the caller's transaction, so a rolled back admission gives its number back.
type SequenceRecordNumbers struct {
	seqRepo repository.RecordSequenceRepository
}

func NewSequenceRecordNumbers(seqRepo repository.RecordSequenceRepository) *SequenceRecordNumbers {
	return &SequenceRecordNumbers{seqRepo: seqRepo}
}

func (g *SequenceRecordNumbers) Next(ctx context.Context, tx *gorm.DB) (string, error) {
	n, err := g.seqRepo.Next(tx, entity.SequenceMRD)
	if err != nil {
		return "", err
	}
	return entity.FormatMRD(n), nil
}

func (g *SequenceRecordNumbers) Observe(ctx context.Context, tx *gorm.DB, mrd string) error {
	n, ok := entity.ParseMRD(mrd)
	if !ok {
		return nil
	}
	return g.seqRepo.RaiseFloor(tx, entity.SequenceMRD, n)
}
