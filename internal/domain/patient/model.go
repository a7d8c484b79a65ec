package patient

import (
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Every patient belongs to the
// professional (user) who registered them.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"userId"`
	Name      string     `db:"name" json:"name"`
	CPF       string     `db:"cpf" json:"cpf"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	HeightCM  *float64   `db:"height_cm" json:"heightCm,omitempty"`
	WeightKG  *float64   `db:"weight_kg" json:"weightKg,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// Anthropometrics is the derived body-composition snapshot for a patient.
// BMR is omitted when the patient record lacks birth date or a male/female
// gender, since the Mifflin-St Jeor equation needs both.
type Anthropometrics struct {
	PatientID         uuid.UUID `json:"patientId"`
	HeightCM          float64   `json:"heightCm"`
	WeightKG          float64   `json:"weightKg"`
	BMI               float64   `json:"bmi"`
	BMIClassification string    `json:"bmiClassification"`
	BMR               *float64  `json:"bmr,omitempty"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeCPF strips formatting punctuation from a CPF, leaving digits only.
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// ValidCPF reports whether cpf is a structurally valid Brazilian CPF:
// 11 digits, not a repeated sequence, both verification digits correct.
func ValidCPF(cpf string) bool {
	cpf = NormalizeCPF(cpf)
	if len(cpf) != 11 {
		return false
	}
	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}
	digits := make([]int, 11)
	for i := 0; i < 11; i++ {
		digits[i] = int(cpf[i] - '0')
	}
	if checkDigit(digits[:9], 10) != digits[9] {
		return false
	}
	return checkDigit(digits[:10], 11) == digits[10]
}

func checkDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// BMI returns the body mass index (kg/m²) rounded to one decimal.
func BMI(heightCM, weightKG float64) float64 {
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*10) / 10
}

// ClassifyBMI maps a BMI value to its WHO classification band.
func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	case bmi < 35:
		return "obesity class I"
	case bmi < 40:
		return "obesity class II"
	default:
		return "obesity class III"
	}
}

// BMR returns the basal metabolic rate in kcal/day by the Mifflin-St Jeor
// equation, rounded to the nearest calorie. ok is false for genders the
// equation has no coefficients for.
func BMR(heightCM, weightKG float64, ageYears int, gender string) (float64, bool) {
	base := 10*weightKG + 6.25*heightCM - 5*float64(ageYears)
	switch gender {
	case "male":
		return math.Round(base + 5), true
	case "female":
		return math.Round(base - 161), true
	}
	return 0, false
}

// AgeAt returns the age in completed years at the reference instant.
func AgeAt(birthDate, at time.Time) int {
	years := at.Year() - birthDate.Year()
	if at.Month() < birthDate.Month() ||
		(at.Month() == birthDate.Month() && at.Day() < birthDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
