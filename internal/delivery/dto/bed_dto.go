package dto

import "time"

// Request DTOs

type ProvisionBedsRequest struct {
	Department string `json:"department" validate:"required,notblank"`
	Count      int    `json:"count" validate:"required,min=1,max=500"`
}

// Response DTOs

type BedResponse struct {
	BedSerial  string    `json:"bed_serial"`
	Department string    `json:"department"`
	Occupied   string    `json:"occupied"`
	PatientSno *int64    `json:"patient_sno"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BedListResponse struct {
	Beds  []BedResponse `json:"beds"`
	Total int           `json:"total"`
}
