package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/service"
	"smartcare/internal/usecase"
	"smartcare/pkg/response"
)

type BedHandler struct {
	bedUsecase usecase.BedUsecase
}

func NewBedHandler(bedUsecase usecase.BedUsecase) *BedHandler {
	return &BedHandler{
		bedUsecase: bedUsecase,
	}
}

func (h *BedHandler) ListBeds(w http.ResponseWriter, r *http.Request) {
	beds, err := h.bedUsecase.ListBeds(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		response.InternalServerError(w, "Failed to get beds")
		return
	}

	response.Success(w, http.StatusOK, "Beds retrieved successfully", beds)
}

func (h *BedHandler) ProvisionBeds(w http.ResponseWriter, r *http.Request) {
	var req dto.ProvisionBedsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	beds, err := h.bedUsecase.ProvisionBeds(r.Context(), &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrBedSerialConflict):
			response.Conflict(w, err.Error())
		case errors.Is(err, service.ErrDepartmentRequired), errors.Is(err, service.ErrInvalidBedCount):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to provision beds")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Beds provisioned successfully", beds)
}
