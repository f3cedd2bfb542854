package facility

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hospital care types.
const (
	HospitalGeneral   = "general"
	HospitalChildrens = "childrens"
	HospitalTeaching  = "teaching"
	HospitalResearch  = "research"
	HospitalMilitary  = "military"
	HospitalSpecialty = "specialty"
	HospitalOther     = "other"
)

// Clinic care types.
const (
	ClinicPrimaryCare = "primary_care"
	ClinicSpecialty   = "specialty"
	ClinicUrgentCare  = "urgent_care"
	ClinicDental      = "dental"
	ClinicVision      = "vision"
	ClinicOther       = "other"
)

var hospitalCareTypes = map[string]bool{
	HospitalGeneral: true, HospitalChildrens: true, HospitalTeaching: true,
	HospitalResearch: true, HospitalMilitary: true, HospitalSpecialty: true,
	HospitalOther: true,
}

var clinicCareTypes = map[string]bool{
	ClinicPrimaryCare: true, ClinicSpecialty: true, ClinicUrgentCare: true,
	ClinicDental: true, ClinicVision: true, ClinicOther: true,
}

// Hospital maps to the hospitals table.
type Hospital struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Address           string     `db:"address" json:"address"`
	Phone             string     `db:"phone" json:"phone"`
	Email             string     `db:"email" json:"email"`
	City              string     `db:"city" json:"city,omitempty"`
	State             string     `db:"state" json:"state,omitempty"`
	ZipCode           string     `db:"zip_code" json:"zip_code,omitempty"`
	EstablishedDate   *time.Time `db:"established_date" json:"established_date,omitempty"`
	WebsiteURL        string     `db:"website_url" json:"website_url,omitempty"`
	CareType          string     `db:"care_type" json:"care_type,omitempty"`
	BedCapacity       int        `db:"bed_capacity" json:"bed_capacity"`
	EmergencyServices bool       `db:"emergency_services" json:"emergency_services"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Clinic maps to the clinics table.
type Clinic struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Address         string     `db:"address" json:"address"`
	Phone           string     `db:"phone" json:"phone"`
	Email           string     `db:"email" json:"email"`
	City            string     `db:"city" json:"city,omitempty"`
	State           string     `db:"state" json:"state,omitempty"`
	ZipCode         string     `db:"zip_code" json:"zip_code,omitempty"`
	EstablishedDate *time.Time `db:"established_date" json:"established_date,omitempty"`
	WebsiteURL      string     `db:"website_url" json:"website_url,omitempty"`
	CareType        string     `db:"care_type" json:"care_type,omitempty"`
	ServicesOffered []string   `db:"services_offered" json:"services_offered,omitempty"`
	AcceptsWalkIns  bool       `db:"accepts_walk_ins" json:"accepts_walk_ins"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// HospitalStatistics is the summary view for one hospital.
type HospitalStatistics struct {
	TotalDoctors      int      `json:"total_doctors"`
	BedCapacity       int      `json:"bed_capacity"`
	EmergencyServices bool     `json:"emergency_services"`
	Specialties       []string `json:"specialties"`
}

// NormalizePhone strips everything except digits and plus signs.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail lowercases and trims an email address for storage.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
