// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/tuvoto/ledger"
)

// Ballot form field names, as posted by the ballot page
const (
	FieldCandidate = "candidato"
	FieldCountry   = "pais"
	FieldCity      = "ciudad"
	FieldLatitude  = "latitud"
	FieldLongitude = "longitud"
	FieldDocument  = "documento"
	FieldBirthYear = "anio_nacimiento"
)

const (
	ProblemRequired     = "required"
	ProblemNotNumber    = "must be a number"
	ProblemOutOfRange   = "out of range"
	ProblemDigitsOnly   = "must contain digits only"
	ProblemNeedsPartner = "latitude and longitude must be given together"
)

const minBirthYear = 1900

// BallotForm is the raw submission before parsing
type BallotForm struct {
	Candidate string
	Country   string
	City      string
	Latitude  string
	Longitude string
	Document  string
	BirthYear string
}

// ValidationError names one bad field
type ValidationError struct {
	Field   string
	Problem string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Problem
}

// ValidateBallot parses the form without touching any store. It reports
// every bad field, in form order.
func ValidateBallot(form BallotForm, now time.Time) (ledger.Ballot, []ValidationError) {
	var (
		ballot ledger.Ballot
		errs   []ValidationError
	)

	required := func(field, value string) string {
		v := strings.TrimSpace(value)
		if v == "" {
			errs = append(errs, ValidationError{Field: field, Problem: ProblemRequired})
		}
		return v
	}

	ballot.Candidate = required(FieldCandidate, form.Candidate)
	ballot.Country = required(FieldCountry, form.Country)
	ballot.City = required(FieldCity, form.City)

	lat := strings.TrimSpace(form.Latitude)
	lng := strings.TrimSpace(form.Longitude)
	switch {
	case lat == "" && lng == "":
	case lat == "":
		errs = append(errs, ValidationError{Field: FieldLatitude, Problem: ProblemNeedsPartner})
	case lng == "":
		errs = append(errs, ValidationError{Field: FieldLongitude, Problem: ProblemNeedsPartner})
	default:
		if v, ok := parseCoordinate(FieldLatitude, lat, 90, &errs); ok {
			ballot.Latitude = &v
		}
		if v, ok := parseCoordinate(FieldLongitude, lng, 180, &errs); ok {
			ballot.Longitude = &v
		}
	}

	if doc := strings.TrimSpace(form.Document); doc != "" {
		if len(doc) > 20 || strings.Trim(doc, "0123456789") != "" {
			errs = append(errs, ValidationError{Field: FieldDocument, Problem: ProblemDigitsOnly})
		} else {
			ballot.DocumentNumber = &doc
		}
	}

	if raw := strings.TrimSpace(form.BirthYear); raw != "" {
		year, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Field: FieldBirthYear, Problem: ProblemNotNumber})
		case year < minBirthYear || year > now.Year():
			errs = append(errs, ValidationError{Field: FieldBirthYear, Problem: ProblemOutOfRange})
		default:
			ballot.BirthYear = &year
		}
	}

	if len(errs) > 0 {
		return ledger.Ballot{}, errs
	}
	return ballot, nil
}

func parseCoordinate(field, raw string, limit float64, errs *[]ValidationError) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*errs = append(*errs, ValidationError{Field: field, Problem: ProblemNotNumber})
		return 0, false
	}
	if v < -limit || v > limit {
		*errs = append(*errs, ValidationError{Field: field, Problem: ProblemOutOfRange})
		return 0, false
	}
	return v, true
}
