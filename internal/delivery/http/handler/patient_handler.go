package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/service"
	"smartcare/internal/usecase"
	"smartcare/pkg/response"

	"github.com/gorilla/mux"
)

const (
	maxImportSize = 32 << 20
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	importUsecase  usecase.PatientImportUsecase
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, importUsecase usecase.PatientImportUsecase) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		importUsecase:  importUsecase,
	}
}

func (h *PatientHandler) AdmitPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.AdmitPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patientUsecase.Admit(r.Context(), &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrNoBedAvailable):
			response.Conflict(w, "No bed available in department")
		case errors.Is(err, service.ErrAllocationConflict), errors.Is(err, usecase.ErrDuplicateMRD):
			response.Conflict(w, "Admission conflicted with another request, please retry")
		default:
			response.InternalServerError(w, "Failed to admit patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient admitted successfully", patient)
}

func (h *PatientHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.SearchPatientsRequest{
		Query:      q.Get("q"),
		Department: q.Get("department"),
		Outcome:    q.Get("outcome"),
		Page:       queryInt(q.Get("page"), 1),
		Limit:      queryInt(q.Get("limit"), 20),
	}

	result, err := h.patientUsecase.SearchPatients(r.Context(), &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to search patients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Patients retrieved successfully", result.Patients, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	sno, ok := patientSno(w, r)
	if !ok {
		return
	}

	patient, err := h.patientUsecase.GetPatient(r.Context(), sno)
	if err != nil {
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		response.InternalServerError(w, "Failed to get patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

func (h *PatientHandler) EditPatient(w http.ResponseWriter, r *http.Request) {
	sno, ok := patientSno(w, r)
	if !ok {
		return
	}

	var req dto.EditPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patientUsecase.Edit(r.Context(), sno, &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		if errors.Is(err, usecase.ErrPatientNotFound) {
			response.NotFound(w, "Patient not found")
			return
		}
		response.InternalServerError(w, "Failed to update patient")
		return
	}

	response.Success(w, http.StatusOK, "Patient updated successfully", patient)
}

func (h *PatientHandler) DischargePatient(w http.ResponseWriter, r *http.Request) {
	sno, ok := patientSno(w, r)
	if !ok {
		return
	}

	result, err := h.patientUsecase.Discharge(r.Context(), sno)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrPatientNotAdmitted):
			response.Conflict(w, "Patient is not admitted")
		default:
			response.InternalServerError(w, "Failed to discharge patient")
		}
		return
	}

	message := "Patient discharged successfully"
	if result.Warning != "" {
		message = "Patient discharged with warning: " + result.Warning
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *PatientHandler) ImportPatients(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "File is required")
		return
	}
	defer file.Close()

	result, err := h.importUsecase.ImportFile(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, usecase.ErrUnsupportedFormat) {
			response.BadRequest(w, "Only .csv and .xlsx files are supported")
			return
		}
		response.InternalServerError(w, "Failed to import patients")
		return
	}

	response.Success(w, http.StatusOK, "Import completed", result)
}

func (h *PatientHandler) ExportPatients(w http.ResponseWriter, r *http.Request) {
	data, err := h.importUsecase.ExportPatients(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to export patients")
		return
	}

	response.Attachment(w, xlsxMediaType, "patients.xlsx", data)
}

func patientSno(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sno, err := strconv.ParseInt(mux.Vars(r)["sno"], 10, 64)
	if err != nil || sno < 1 {
		response.BadRequest(w, "Invalid patient ID")
		return 0, false
	}
	return sno, true
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// writeValidationError renders a usecase.ValidationError, reporting whether
// err was one.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var validationErr *usecase.ValidationError
	if !errors.As(err, &validationErr) {
		return false
	}
	response.ValidationError(w, validationErr.Fields)
	return true
}
