package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome represents where a patient is in the admission lifecycle
type Outcome string

const (
	OutcomeAdmitted   Outcome = "Admitted"
	OutcomeDischarged Outcome = "Discharged"
	OutcomeDeceased   Outcome = "Deceased"
)

// Admission types
const (
	AdmissionRoutine   = "Routine"
	AdmissionEmergency = "Emergency"
)

// Yes/No values used by the clinical flag columns
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

// Patient is a hospital admission record. Bed occupancy is looked up through
// the beds table; a patient holds no reference to its bed.
type Patient struct {
	Sno             int64               `gorm:"column:sno;primaryKey;autoIncrement" json:"sno"`
	MrdNo           string              `gorm:"column:mrd_no;type:varchar(32);uniqueIndex;not null" json:"mrd_no"`
	Doa             *string             `gorm:"column:doa;type:varchar(32);index" json:"doa,omitempty"`
	Dod             *string             `gorm:"column:dod;type:varchar(32);index" json:"dod,omitempty"`
	Name            string              `gorm:"type:varchar(255)" json:"name"`
	Age             int                 `json:"age"`
	Gender          string              `gorm:"type:varchar(16)" json:"gender"`
	Department      string              `gorm:"type:varchar(100);index" json:"department"`
	TypeOfAdmission string              `gorm:"type:varchar(32)" json:"type_of_admission"`
	DurationOfStay  *int                `json:"duration_of_stay,omitempty"`
	Outcome         Outcome             `gorm:"type:varchar(16);not null;default:'Admitted';index" json:"outcome"`
	Smoking         *string             `gorm:"type:varchar(3)" json:"smoking,omitempty"`
	Alcohol         *string             `gorm:"type:varchar(3)" json:"alcohol,omitempty"`
	Hb              decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"hb"`
	Tlc             decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"tlc"`
	Platelets       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"platelets"`
	Glucose         decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"glucose"`
	Anaemia         *string             `gorm:"type:varchar(3)" json:"anaemia,omitempty"`
	HeartFailure    *string             `gorm:"type:varchar(3)" json:"heart_failure,omitempty"`
	Uti             *string             `gorm:"type:varchar(3)" json:"uti,omitempty"`
	ChestInfection  *string             `gorm:"type:varchar(3)" json:"chest_infection,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// IsAdmitted checks if the patient currently occupies (or should occupy) a bed
func (p *Patient) IsAdmitted() bool {
	return p.Outcome == OutcomeAdmitted
}

// Discharge marks the patient discharged at the given time
func (p *Patient) Discharge(at time.Time) {
	dod := FormatTimestamp(at)
	p.Dod = &dod
	p.Outcome = OutcomeDischarged
	p.RecomputeDurationOfStay()
}

// RecomputeDurationOfStay derives DurationOfStay from Doa and Dod.
// It is nil unless both dates parse.
func (p *Patient) RecomputeDurationOfStay() {
	p.DurationOfStay = StayDuration(p.Doa, p.Dod)
}

// IsValidOutcome reports whether s names a known outcome
func IsValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeAdmitted, OutcomeDischarged, OutcomeDeceased:
		return true
	}
	return false
}
