package usecase

import (
	"context"
	"strings"

	"smartcare/internal/converter"
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/repository"
	"smartcare/internal/service"
	"smartcare/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BedUsecase interface {
	ProvisionBeds(ctx context.Context, req *dto.ProvisionBedsRequest) (*dto.BedListResponse, error)
	ListBeds(ctx context.Context, department string) (*dto.BedListResponse, error)
	EnsureDepartments(ctx context.Context, departments []string, bedsPerDepartment int) (int, error)
}

type bedUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	bedRepo   repository.BedRepository
	allocator *service.BedAllocator
	validator *validator.CustomValidator
}

func NewBedUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bedRepo repository.BedRepository,
	allocator *service.BedAllocator,
	validator *validator.CustomValidator,
) BedUsecase {
	return &bedUsecase{
		db:        db,
		log:       log,
		bedRepo:   bedRepo,
		allocator: allocator,
		validator: validator,
	}
}

// ProvisionBeds appends beds to a department in one transaction
func (u *bedUsecase) ProvisionBeds(ctx context.Context, req *dto.ProvisionBedsRequest) (*dto.BedListResponse, error) {
	if err := u.validator.Validate(req); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, tx.Error
	}
	defer tx.Rollback()

	beds, err := u.allocator.Provision(tx, req.Department, req.Count)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit bed provisioning: %+v", err)
		return nil, err
	}

	return &dto.BedListResponse{
		Beds:  converter.BedsToResponses(beds),
		Total: len(beds),
	}, nil
}

// ListBeds returns the bed board, optionally for one department
func (u *bedUsecase) ListBeds(ctx context.Context, department string) (*dto.BedListResponse, error) {
	beds, err := u.bedRepo.FindAll(u.db.WithContext(ctx), strings.TrimSpace(department))
	if err != nil {
		u.log.Warnf("Failed to find beds: %+v", err)
		return nil, err
	}

	return &dto.BedListResponse{
		Beds:  converter.BedsToResponses(beds),
		Total: len(beds),
	}, nil
}

// EnsureDepartments provisions the default bed count for configured
// departments that have no beds yet.
func (u *bedUsecase) EnsureDepartments(ctx context.Context, departments []string, bedsPerDepartment int) (int, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return 0, tx.Error
	}
	defer tx.Rollback()

	created, err := u.allocator.EnsureDepartments(tx, departments, bedsPerDepartment)
	if err != nil {
		u.log.Warnf("Failed to provision departments: %+v", err)
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit department provisioning: %+v", err)
		return 0, err
	}
	return created, nil
}
