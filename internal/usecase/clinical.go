package usecase

import (
	"strings"

	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// parseLabValue parses an optional lab value. Empty input clears the value.
func parseLabValue(field, raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, newValidationError(field, field+" must be numeric")
	}
	return decimal.NewNullDecimal(d), nil
}

// optionalText returns nil for blank input
func optionalText(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

// parseFlag normalizes a Yes/No flag. Case is ignored; blank clears it.
func parseFlag(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "yes", "y":
		v := entity.FlagYes
		return &v, nil
	case "no", "n":
		v := entity.FlagNo
		return &v, nil
	}
	return nil, newValidationError(field, field+" must be Yes or No")
}

// applyClinicalFields parses every clinical field of fields onto patient.
// patient is left untouched when any field is invalid.
func applyClinicalFields(patient *entity.Patient, fields *dto.ClinicalFields) error {
	p := *patient
	flags := []struct {
		name   string
		raw    string
		target **string
	}{
		{"smoking", fields.Smoking, &p.Smoking},
		{"alcohol", fields.Alcohol, &p.Alcohol},
		{"anaemia", fields.Anaemia, &p.Anaemia},
		{"heart_failure", fields.HeartFailure, &p.HeartFailure},
		{"uti", fields.Uti, &p.Uti},
		{"chest_infection", fields.ChestInfection, &p.ChestInfection},
	}
	for _, f := range flags {
		v, err := parseFlag(f.name, f.raw)
		if err != nil {
			return err
		}
		*f.target = v
	}

	labs := []struct {
		name   string
		raw    string
		target *decimal.NullDecimal
	}{
		{"hb", fields.Hb, &p.Hb},
		{"tlc", fields.Tlc, &p.Tlc},
		{"platelets", fields.Platelets, &p.Platelets},
		{"glucose", fields.Glucose, &p.Glucose},
	}
	for _, l := range labs {
		v, err := parseLabValue(l.name, l.raw)
		if err != nil {
			return err
		}
		*l.target = v
	}

	*patient = p
	return nil
}
