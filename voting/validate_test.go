// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validationNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func validForm() BallotForm {
	return BallotForm{Candidate: "Candidate A", Country: "BO", City: "La Paz"}
}

func TestValidateBallot_Minimal(t *testing.T) {
	ballot, errs := ValidateBallot(validForm(), validationNow)
	require.Empty(t, errs)
	assert.Equal(t, "Candidate A", ballot.Candidate)
	assert.Equal(t, "BO", ballot.Country)
	assert.Equal(t, "La Paz", ballot.City)
	assert.Nil(t, ballot.Latitude)
	assert.Nil(t, ballot.Longitude)
	assert.Nil(t, ballot.DocumentNumber)
	assert.Nil(t, ballot.BirthYear)
}

func TestValidateBallot_AllFields(t *testing.T) {
	form := validForm()
	form.Candidate = "  Candidate B  "
	form.Latitude = "-16.5"
	form.Longitude = "-68.15"
	form.Document = "0012345"
	form.BirthYear = "1990"

	ballot, errs := ValidateBallot(form, validationNow)
	require.Empty(t, errs)
	assert.Equal(t, "Candidate B", ballot.Candidate)
	require.NotNil(t, ballot.Latitude)
	assert.InDelta(t, -16.5, *ballot.Latitude, 1e-9)
	require.NotNil(t, ballot.Longitude)
	assert.InDelta(t, -68.15, *ballot.Longitude, 1e-9)
	require.NotNil(t, ballot.DocumentNumber)
	assert.Equal(t, "0012345", *ballot.DocumentNumber, "leading zeros are kept")
	require.NotNil(t, ballot.BirthYear)
	assert.Equal(t, 1990, *ballot.BirthYear)
}

func TestValidateBallot_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BallotForm)
		want   []ValidationError
	}{
		{"missing candidate", func(f *BallotForm) { f.Candidate = "" },
			[]ValidationError{{FieldCandidate, ProblemRequired}}},
		{"blank candidate", func(f *BallotForm) { f.Candidate = "   " },
			[]ValidationError{{FieldCandidate, ProblemRequired}}},
		{"missing locality", func(f *BallotForm) { f.Country = ""; f.City = "" },
			[]ValidationError{{FieldCountry, ProblemRequired}, {FieldCity, ProblemRequired}}},
		{"latitude alone", func(f *BallotForm) { f.Latitude = "-16.5" },
			[]ValidationError{{FieldLongitude, ProblemNeedsPartner}}},
		{"longitude alone", func(f *BallotForm) { f.Longitude = "-68.1" },
			[]ValidationError{{FieldLatitude, ProblemNeedsPartner}}},
		{"latitude not a number", func(f *BallotForm) { f.Latitude = "south"; f.Longitude = "-68.1" },
			[]ValidationError{{FieldLatitude, ProblemNotNumber}}},
		{"latitude NaN", func(f *BallotForm) { f.Latitude = "NaN"; f.Longitude = "-68.1" },
			[]ValidationError{{FieldLatitude, ProblemNotNumber}}},
		{"coordinates out of range", func(f *BallotForm) { f.Latitude = "91"; f.Longitude = "-181" },
			[]ValidationError{{FieldLatitude, ProblemOutOfRange}, {FieldLongitude, ProblemOutOfRange}}},
		{"document with letters", func(f *BallotForm) { f.Document = "12AB34" },
			[]ValidationError{{FieldDocument, ProblemDigitsOnly}}},
		{"document too long", func(f *BallotForm) { f.Document = "123456789012345678901" },
			[]ValidationError{{FieldDocument, ProblemDigitsOnly}}},
		{"birth year not numeric", func(f *BallotForm) { f.BirthYear = "nineteen ninety" },
			[]ValidationError{{FieldBirthYear, ProblemNotNumber}}},
		{"birth year in future", func(f *BallotForm) { f.BirthYear = "2030" },
			[]ValidationError{{FieldBirthYear, ProblemOutOfRange}}},
		{"birth year too old", func(f *BallotForm) { f.BirthYear = "1850" },
			[]ValidationError{{FieldBirthYear, ProblemOutOfRange}}},
		{"everything wrong", func(f *BallotForm) { *f = BallotForm{Document: "x", BirthYear: "y"} },
			[]ValidationError{
				{FieldCandidate, ProblemRequired},
				{FieldCountry, ProblemRequired},
				{FieldCity, ProblemRequired},
				{FieldDocument, ProblemDigitsOnly},
				{FieldBirthYear, ProblemNotNumber},
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, errs := ValidateBallot(form, validationNow)
			assert.Equal(t, tt.want, errs)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: FieldCandidate, Problem: ProblemRequired}
	assert.Equal(t, "candidato: required", err.Error())
}
