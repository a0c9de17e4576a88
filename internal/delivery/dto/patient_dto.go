package dto

import "time"

// Request DTOs

// ClinicalFields are the optional clinical details of an admission.
// Lab values arrive as text and are parsed into decimals.
type ClinicalFields struct {
	Smoking        string `json:"smoking" validate:"omitempty,yesno"`
	Alcohol        string `json:"alcohol" validate:"omitempty,yesno"`
	Hb             string `json:"hb" validate:"omitempty,decimal"`
	Tlc            string `json:"tlc" validate:"omitempty,decimal"`
	Platelets      string `json:"platelets" validate:"omitempty,decimal"`
	Glucose        string `json:"glucose" validate:"omitempty,decimal"`
	Anaemia        string `json:"anaemia" validate:"omitempty,yesno"`
	HeartFailure   string `json:"heart_failure" validate:"omitempty,yesno"`
	Uti            string `json:"uti" validate:"omitempty,yesno"`
	ChestInfection string `json:"chest_infection" validate:"omitempty,yesno"`
}

type AdmitPatientRequest struct {
	Name            string `json:"name" validate:"required"`
	Age             int    `json:"age" validate:"gt=0"`
	Gender          string `json:"gender" validate:"required"`
	Department      string `json:"department" validate:"required"`
	AdmissionDate   string `json:"admission_date" validate:"omitempty,datetime=2006-01-02"` // Format: YYYY-MM-DD, defaults to now
	TypeOfAdmission string `json:"type_of_admission" validate:"omitempty,oneof=Routine Emergency"`
	ClinicalFields
}

// EditPatientRequest carries the editable fields. Nil means unchanged; an
// empty string clears an optional clinical field.
type EditPatientRequest struct {
	Dod             *string `json:"dod"`
	Department      *string `json:"department" validate:"omitempty,notblank"`
	TypeOfAdmission *string `json:"type_of_admission" validate:"omitempty,oneof=Routine Emergency"`
	Outcome         *string `json:"outcome" validate:"omitempty,oneof=Admitted Discharged Deceased"`
	Smoking         *string `json:"smoking" validate:"omitempty,yesno"`
	Alcohol         *string `json:"alcohol" validate:"omitempty,yesno"`
	Hb              *string `json:"hb" validate:"omitempty,decimal"`
	Tlc             *string `json:"tlc" validate:"omitempty,decimal"`
	Platelets       *string `json:"platelets" validate:"omitempty,decimal"`
	Glucose         *string `json:"glucose" validate:"omitempty,decimal"`
	Anaemia         *string `json:"anaemia" validate:"omitempty,yesno"`
	HeartFailure    *string `json:"heart_failure" validate:"omitempty,yesno"`
	Uti             *string `json:"uti" validate:"omitempty,yesno"`
	ChestInfection  *string `json:"chest_infection" validate:"omitempty,yesno"`
}

type SearchPatientsRequest struct {
	Query      string `validate:"omitempty,max=100"`
	Department string `validate:"omitempty"`
	Outcome    string `validate:"omitempty,oneof=Admitted Discharged Deceased"`
	Page       int    `validate:"gte=1,lte=100000"`
	Limit      int    `validate:"gte=1,lte=500"`
}

// Response DTOs

type PatientResponse struct {
	Sno             int64     `json:"sno"`
	MrdNo           string    `json:"mrd_no"`
	Doa             *string   `json:"doa"`
	Dod             *string   `json:"dod"`
	Name            string    `json:"name"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	Department      string    `json:"department"`
	TypeOfAdmission string    `json:"type_of_admission"`
	DurationOfStay  *int      `json:"duration_of_stay"`
	Outcome         string    `json:"outcome"`
	BedSerial       string    `json:"bed_serial,omitempty"`
	Smoking         *string   `json:"smoking"`
	Alcohol         *string   `json:"alcohol"`
	Hb              *float64  `json:"hb"`
	Tlc             *float64  `json:"tlc"`
	Platelets       *float64  `json:"platelets"`
	Glucose         *float64  `json:"glucose"`
	Anaemia         *string   `json:"anaemia"`
	HeartFailure    *string   `json:"heart_failure"`
	Uti             *string   `json:"uti"`
	ChestInfection  *string   `json:"chest_infection"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int64             `json:"total"`
	Page     int               `json:"-"`
	Limit    int               `json:"-"`
}

type DischargeResponse struct {
	Patient     *PatientResponse `json:"patient"`
	ReleasedBed string           `json:"released_bed,omitempty"`
	Warning     string           `json:"warning,omitempty"`
}
