package directory

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table. Names and specialization are stored
// title-cased; see NormalizeName.
type Doctor struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Specialization string     `db:"specialization" json:"specialization"`
	HospitalID     *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	ClinicID       *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// DisplayName is the honorific form used in calendars and schedules.
func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FullName()
}

func (d *Doctor) WorksAtHospital() bool { return d.HospitalID != nil }
func (d *Doctor) WorksAtClinic() bool   { return d.ClinicID != nil }

// Patient maps to the patients table. Email is stored lowercased and unique.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Email       string    `db:"email" json:"email"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age returns the patient's age in whole years at the given instant.
func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if now.Before(anniversary) {
		years--
	}
	return years
}

func (p *Patient) IsMinor(now time.Time) bool  { return p.Age(now) < 18 }
func (p *Patient) IsSenior(now time.Time) bool { return p.Age(now) >= 65 }

// NormalizeName trims the input and title-cases each word. Words are delimited
// by spaces and hyphens, so "mary-jane  o brien" becomes "Mary-Jane O Brien".
func NormalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	boundary := true
	for _, r := range s {
		if boundary {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		boundary = r == ' ' || r == '-'
	}
	return b.String()
}

// NormalizeEmail lowercases and trims an email address for storage.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
