package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockHospitalRepo struct {
	hospitals map[uuid.UUID]*Hospital
	staff     map[uuid.UUID][]string // hospital id -> doctor specializations
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{
		hospitals: make(map[uuid.UUID]*Hospital),
		staff:     make(map[uuid.UUID][]string),
	}
}

func (m *mockHospitalRepo) Create(_ context.Context, h *Hospital) error {
	for _, other := range m.hospitals {
		if other.Name == h.Name {
			return ValidationErrors{{Field: "name", Message: "is already taken"}}
		}
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	cp := *h
	m.hospitals[h.ID] = &cp
	return nil
}

func (m *mockHospitalRepo) GetByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	h, ok := m.hospitals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *mockHospitalRepo) Update(_ context.Context, h *Hospital) error {
	if _, ok := m.hospitals[h.ID]; !ok {
		return ErrNotFound
	}
	cp := *h
	m.hospitals[h.ID] = &cp
	return nil
}

func (m *mockHospitalRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.hospitals[id]; !ok {
		return ErrNotFound
	}
	delete(m.hospitals, id)
	return nil
}

func (m *mockHospitalRepo) List(_ context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error) {
	var result []*Hospital
	for _, h := range m.hospitals {
		if f.City != "" && h.City != f.City {
			continue
		}
		if f.CareType != "" && h.CareType != f.CareType {
			continue
		}
		if f.EmergencyServices != nil && h.EmergencyServices != *f.EmergencyServices {
			continue
		}
		cp := *h
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockHospitalRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.hospitals[id]
	return ok, nil
}

func (m *mockHospitalRepo) DoctorCount(_ context.Context, id uuid.UUID) (int, error) {
	return len(m.staff[id]), nil
}

func (m *mockHospitalRepo) Specialties(_ context.Context, id uuid.UUID) ([]string, error) {
	seen := make(map[string]bool)
	specialties := []string{}
	for _, s := range m.staff[id] {
		if !seen[s] {
			seen[s] = true
			specialties = append(specialties, s)
		}
	}
	return specialties, nil
}

type mockClinicRepo struct {
	clinics map[uuid.UUID]*Clinic
	staff   map[uuid.UUID]int
}

func newMockClinicRepo() *mockClinicRepo {
	return &mockClinicRepo{clinics: make(map[uuid.UUID]*Clinic), staff: make(map[uuid.UUID]int)}
}

func (m *mockClinicRepo) Create(_ context.Context, c *Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *mockClinicRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClinicRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *mockClinicRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.clinics[id]; !ok {
		return ErrNotFound
	}
	delete(m.clinics, id)
	return nil
}

func (m *mockClinicRepo) List(_ context.Context, f ClinicFilter, limit, offset int) ([]*Clinic, int, error) {
	var result []*Clinic
	for _, c := range m.clinics {
		if f.City != "" && c.City != f.City {
			continue
		}
		if f.CareType != "" && c.CareType != f.CareType {
			continue
		}
		if f.AcceptsWalkIns != nil && c.AcceptsWalkIns != *f.AcceptsWalkIns {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockClinicRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.clinics[id]
	return ok, nil
}

func (m *mockClinicRepo) DoctorCount(_ context.Context, id uuid.UUID) (int, error) {
	return m.staff[id], nil
}

func newTestService() (*Service, *mockHospitalRepo, *mockClinicRepo) {
	hospitals := newMockHospitalRepo()
	clinics := newMockClinicRepo()
	return NewService(hospitals, clinics), hospitals, clinics
}

func validHospital() *Hospital {
	return &Hospital{
		Name:        "St. Mary General",
		Address:     "100 Main St",
		Phone:       "(555) 123-4567",
		Email:       "Contact@StMary.ORG",
		City:        "Springfield",
		CareType:    HospitalGeneral,
		BedCapacity: 200,
	}
}

func validClinic() *Clinic {
	return &Clinic{
		Name:           "Downtown Family Clinic",
		Address:        "22 Oak Ave",
		Phone:          "+1 555 987 6543",
		Email:          "hello@downtownclinic.com",
		City:           "Springfield",
		CareType:       ClinicPrimaryCare,
		AcceptsWalkIns: true,
	}
}

func TestCreateHospital_Normalizes(t *testing.T) {
	svc, _, _ := newTestService()
	h := validHospital()
	if err := svc.CreateHospital(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Phone != "5551234567" {
		t.Errorf("expected normalized phone, got %q", h.Phone)
	}
	if h.Email != "contact@stmary.org" {
		t.Errorf("expected lowercased email, got %q", h.Email)
	}
}

func TestCreateHospital_RequiresContactFields(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateHospital(context.Background(), &Hospital{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 4 {
		t.Errorf("expected name, address, phone and email errors, got %d: %v", len(verrs), verrs)
	}
}

func TestCreateHospital_InvalidCareType(t *testing.T) {
	svc, _, _ := newTestService()
	h := validHospital()
	h.CareType = "veterinary"
	if err := svc.CreateHospital(context.Background(), h); err == nil {
		t.Error("expected error for invalid care type")
	}
}

func TestCreateHospital_NegativeBedCapacity(t *testing.T) {
	svc, _, _ := newTestService()
	h := validHospital()
	h.BedCapacity = -1
	if err := svc.CreateHospital(context.Background(), h); err == nil {
		t.Error("expected error for negative bed capacity")
	}
}

func TestCreateHospital_ShortPhone(t *testing.T) {
	svc, _, _ := newTestService()
	h := validHospital()
	h.Phone = "12345"
	if err := svc.CreateHospital(context.Background(), h); err == nil {
		t.Error("expected error for short phone number")
	}
}

func TestCreateHospital_DuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.CreateHospital(context.Background(), validHospital()); err != nil {
		t.Fatal(err)
	}
	err := svc.CreateHospital(context.Background(), validHospital())
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if verrs[0].Field != "name" {
		t.Errorf("expected name error, got %v", verrs)
	}
}

func TestDeleteHospital_BlockedWhileStaffed(t *testing.T) {
	svc, hospitals, _ := newTestService()
	h := validHospital()
	if err := svc.CreateHospital(context.Background(), h); err != nil {
		t.Fatal(err)
	}
	hospitals.staff[h.ID] = []string{"Cardiology"}

	err := svc.DeleteHospital(context.Background(), h.ID)
	if !errors.Is(err, ErrHasDoctors) {
		t.Errorf("expected ErrHasDoctors, got %v", err)
	}

	hospitals.staff[h.ID] = nil
	if err := svc.DeleteHospital(context.Background(), h.ID); err != nil {
		t.Fatalf("expected delete after staff removed, got %v", err)
	}
}

func TestHospitalStatistics(t *testing.T) {
	svc, hospitals, _ := newTestService()
	h := validHospital()
	if err := svc.CreateHospital(context.Background(), h); err != nil {
		t.Fatal(err)
	}
	hospitals.staff[h.ID] = []string{"Cardiology", "Oncology", "Cardiology"}

	stats, err := svc.HospitalStatistics(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalDoctors != 3 {
		t.Errorf("expected 3 doctors, got %d", stats.TotalDoctors)
	}
	if stats.BedCapacity != 200 {
		t.Errorf("expected bed capacity 200, got %d", stats.BedCapacity)
	}
	if len(stats.Specialties) != 2 {
		t.Errorf("expected 2 distinct specialties, got %v", stats.Specialties)
	}
}

func TestHospitalStatistics_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.HospitalStatistics(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateClinic(t *testing.T) {
	svc, _, _ := newTestService()
	c := validClinic()
	if err := svc.CreateClinic(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Phone != "+15559876543" {
		t.Errorf("expected normalized phone, got %q", c.Phone)
	}
}

func TestCreateClinic_InvalidCareType(t *testing.T) {
	svc, _, _ := newTestService()
	c := validClinic()
	c.CareType = "general" // a hospital type, not a clinic type
	if err := svc.CreateClinic(context.Background(), c); err == nil {
		t.Error("expected error for invalid clinic care type")
	}
}

func TestDeleteClinic_BlockedWhileStaffed(t *testing.T) {
	svc, _, clinics := newTestService()
	c := validClinic()
	if err := svc.CreateClinic(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	clinics.staff[c.ID] = 2

	err := svc.DeleteClinic(context.Background(), c.ID)
	if !errors.Is(err, ErrHasDoctors) {
		t.Errorf("expected ErrHasDoctors, got %v", err)
	}
}

func TestListClinics_WalkInFilter(t *testing.T) {
	svc, _, _ := newTestService()
	walkIn := validClinic()
	if err := svc.CreateClinic(context.Background(), walkIn); err != nil {
		t.Fatal(err)
	}
	byAppointment := validClinic()
	byAppointment.Name = "Appointment Only Clinic"
	byAppointment.AcceptsWalkIns = false
	if err := svc.CreateClinic(context.Background(), byAppointment); err != nil {
		t.Fatal(err)
	}

	yes := true
	items, total, err := svc.ListClinics(context.Background(), ClinicFilter{AcceptsWalkIns: &yes}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one walk-in clinic, got %d", total)
	}
	if !items[0].AcceptsWalkIns {
		t.Error("expected the walk-in clinic")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(555) 123-4567":  "5551234567",
		"+1 555 987 6543": "+15559876543",
		"555.123.4567":    "5551234567",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestHospitalExists(t *testing.T) {
	svc, _, _ := newTestService()
	h := validHospital()
	if err := svc.CreateHospital(context.Background(), h); err != nil {
		t.Fatal(err)
	}
	ok, err := svc.HospitalExists(context.Background(), h.ID)
	if err != nil || !ok {
		t.Errorf("expected hospital to exist, got %v/%v", ok, err)
	}
	ok, err = svc.ClinicExists(context.Background(), h.ID)
	if err != nil || ok {
		t.Errorf("hospital id should not exist as a clinic, got %v/%v", ok, err)
	}
}
