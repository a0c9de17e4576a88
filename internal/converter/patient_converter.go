package converter

import (
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO.
// bedSerial is the bed currently linked to the patient, if any.
func PatientToResponse(patient *entity.Patient, bedSerial string) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		Sno:             patient.Sno,
		MrdNo:           patient.MrdNo,
		Doa:             patient.Doa,
		Dod:             patient.Dod,
		Name:            patient.Name,
		Age:             patient.Age,
		Gender:          patient.Gender,
		Department:      patient.Department,
		TypeOfAdmission: patient.TypeOfAdmission,
		DurationOfStay:  patient.DurationOfStay,
		Outcome:         string(patient.Outcome),
		BedSerial:       bedSerial,
		Smoking:         patient.Smoking,
		Alcohol:         patient.Alcohol,
		Hb:              decimalToFloat(patient.Hb),
		Tlc:             decimalToFloat(patient.Tlc),
		Platelets:       decimalToFloat(patient.Platelets),
		Glucose:         decimalToFloat(patient.Glucose),
		Anaemia:         patient.Anaemia,
		HeartFailure:    patient.HeartFailure,
		Uti:             patient.Uti,
		ChestInfection:  patient.ChestInfection,
		CreatedAt:       patient.CreatedAt,
		UpdatedAt:       patient.UpdatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities. Search results
// carry no bed serial.
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i], "")
	}
	return responses
}

func decimalToFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
