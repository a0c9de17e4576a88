package handler

import (
	"errors"
	"net/http"

	"smartcare/internal/usecase"
	"smartcare/pkg/response"

	"github.com/gorilla/mux"
)

type OccupancyHandler struct {
	occupancyUsecase usecase.OccupancyUsecase
}

func NewOccupancyHandler(occupancyUsecase usecase.OccupancyUsecase) *OccupancyHandler {
	return &OccupancyHandler{
		occupancyUsecase: occupancyUsecase,
	}
}

func (h *OccupancyHandler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	occupancy, err := h.occupancyUsecase.Summarize(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get occupancy")
		return
	}

	response.Success(w, http.StatusOK, "Occupancy retrieved successfully", occupancy)
}

func (h *OccupancyHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.occupancyUsecase.Overview(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get overview")
		return
	}

	response.Success(w, http.StatusOK, "Overview retrieved successfully", overview)
}

func (h *OccupancyHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]

	distribution, err := h.occupancyUsecase.Distribution(r.Context(), field)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownField) {
			response.BadRequest(w, "Unknown analytics field: "+field)
			return
		}
		response.InternalServerError(w, "Failed to get distribution")
		return
	}

	response.Success(w, http.StatusOK, "Distribution retrieved successfully", distribution)
}
