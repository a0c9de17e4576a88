package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OccupiedFlag is stored as YES/NO
type OccupiedFlag string

const (
	OccupiedYes OccupiedFlag = "YES"
	OccupiedNo  OccupiedFlag = "NO"
)

// Bed is a physical bed in a department. PatientSno is set while a patient
// occupies it; at most one bed references a patient.
type Bed struct {
	BedSerial  string       `gorm:"column:bed_serial;type:varchar(32);primaryKey" json:"bed_serial"`
	Department string       `gorm:"type:varchar(100);not null;index:idx_beds_department_occupied,priority:1" json:"department"`
	Occupied   OccupiedFlag `gorm:"type:varchar(3);not null;default:'NO';index:idx_beds_department_occupied,priority:2" json:"occupied"`
	PatientSno *int64       `gorm:"column:patient_sno;uniqueIndex" json:"patient_sno,omitempty"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientSno;references:Sno" json:"patient,omitempty"`
}

func (Bed) TableName() string {
	return "beds"
}

// IsOccupied checks if the bed is currently occupied
func (b *Bed) IsOccupied() bool {
	return b.Occupied == OccupiedYes
}

const bedSerialPrefix = "BED-"

// DepartmentCode returns the serial code of a department: its first three
// letters, upper-cased.
func DepartmentCode(department string) string {
	code := []rune(strings.ToUpper(strings.TrimSpace(department)))
	if len(code) > 3 {
		code = code[:3]
	}
	return string(code)
}

// BedSerialPrefix returns the common prefix of every bed serial in department
func BedSerialPrefix(department string) string {
	return bedSerialPrefix + DepartmentCode(department) + "-"
}

// FormatBedSerial builds BED-<DEPT3>-<NNN>
func FormatBedSerial(department string, index int) string {
	return fmt.Sprintf("%s%03d", BedSerialPrefix(department), index)
}

// BedSerialIndex extracts the numeric index from a serial with the given
// prefix. ok is false when the serial does not follow the scheme.
func BedSerialIndex(serial, prefix string) (int, bool) {
	if !strings.HasPrefix(serial, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(serial, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
