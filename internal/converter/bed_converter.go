package converter

import (
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
)

// BedToResponse converts a Bed entity to BedResponse DTO
func BedToResponse(bed *entity.Bed) *dto.BedResponse {
	if bed == nil {
		return nil
	}

	return &dto.BedResponse{
		BedSerial:  bed.BedSerial,
		Department: bed.Department,
		Occupied:   string(bed.Occupied),
		PatientSno: bed.PatientSno,
		CreatedAt:  bed.CreatedAt,
		UpdatedAt:  bed.UpdatedAt,
	}
}

// BedsToResponses converts a slice of Bed entities to slice of BedResponse DTOs
func BedsToResponses(beds []entity.Bed) []dto.BedResponse {
	responses := make([]dto.BedResponse, len(beds))
	for i := range beds {
		responses[i] = *BedToResponse(&beds[i])
	}
	return responses
}
