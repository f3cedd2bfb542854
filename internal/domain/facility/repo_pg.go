package facility

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/platform/db"
)

// translateUnique maps unique-constraint violations on name/email/phone to a
// field-level validation error, so callers see the same error shape as the
// service's own checks.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	for _, field := range []string{"name", "email", "phone"} {
		if strings.Contains(pgErr.ConstraintName, field) {
			return ValidationErrors{{Field: field, Message: "is already taken"}}
		}
	}
	return ValidationErrors{{Field: "base", Message: "duplicate record"}}
}

// -- Hospital repository --

type hospitalRepoPG struct{ pool *pgxpool.Pool }

func NewHospitalRepoPG(pool *pgxpool.Pool) HospitalRepository {
	return &hospitalRepoPG{pool: pool}
}

func (r *hospitalRepoPG) conn(ctx context.Context) db.Querier {
	if c := db.QuerierFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const hospitalCols = `id, name, address, phone, email, city, state, zip_code,
	established_date, website_url, care_type, bed_capacity, emergency_services,
	created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Email, &h.City, &h.State, &h.ZipCode,
		&h.EstablishedDate, &h.WebsiteURL, &h.CareType, &h.BedCapacity, &h.EmergencyServices,
		&h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &h, err
}

func (r *hospitalRepoPG) Create(ctx context.Context, h *Hospital) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospitals (id, name, address, phone, email, city, state, zip_code,
			established_date, website_url, care_type, bed_capacity, emergency_services)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		h.ID, h.Name, h.Address, h.Phone, h.Email, h.City, h.State, h.ZipCode,
		h.EstablishedDate, h.WebsiteURL, h.CareType, h.BedCapacity, h.EmergencyServices)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *hospitalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.conn(ctx).QueryRow(ctx, `SELECT `+hospitalCols+` FROM hospitals WHERE id = $1`, id))
}

func (r *hospitalRepoPG) Update(ctx context.Context, h *Hospital) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospitals SET name=$2, address=$3, phone=$4, email=$5, city=$6, state=$7,
			zip_code=$8, established_date=$9, website_url=$10, care_type=$11,
			bed_capacity=$12, emergency_services=$13, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Address, h.Phone, h.Email, h.City, h.State, h.ZipCode,
		h.EstablishedDate, h.WebsiteURL, h.CareType, h.BedCapacity, h.EmergencyServices)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *hospitalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM hospitals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *hospitalRepoPG) List(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.City != "" {
		where += fmt.Sprintf(` AND city ILIKE $%d`, idx)
		args = append(args, f.City)
		idx++
	}
	if f.CareType != "" {
		where += fmt.Sprintf(` AND care_type = $%d`, idx)
		args = append(args, f.CareType)
		idx++
	}
	if f.EmergencyServices != nil {
		where += fmt.Sprintf(` AND emergency_services = $%d`, idx)
		args = append(args, *f.EmergencyServices)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR address ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + hospitalCols + ` FROM hospitals` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

func (r *hospitalRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hospitals WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *hospitalRepoPG) DoctorCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors WHERE hospital_id = $1`, id).Scan(&n)
	return n, err
}

func (r *hospitalRepoPG) Specialties(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT specialization FROM doctors
		WHERE hospital_id = $1 ORDER BY specialization`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	specialties := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		specialties = append(specialties, s)
	}
	return specialties, rows.Err()
}

// -- Clinic repository --

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository {
	return &clinicRepoPG{pool: pool}
}

func (r *clinicRepoPG) conn(ctx context.Context) db.Querier {
	if c := db.QuerierFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const clinicCols = `id, name, address, phone, email, city, state, zip_code,
	established_date, website_url, care_type, services_offered, accepts_walk_ins,
	created_at, updated_at`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.City, &c.State, &c.ZipCode,
		&c.EstablishedDate, &c.WebsiteURL, &c.CareType, &c.ServicesOffered, &c.AcceptsWalkIns,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *clinicRepoPG) Create(ctx context.Context, c *Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinics (id, name, address, phone, email, city, state, zip_code,
			established_date, website_url, care_type, services_offered, accepts_walk_ins)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.City, c.State, c.ZipCode,
		c.EstablishedDate, c.WebsiteURL, c.CareType, c.ServicesOffered, c.AcceptsWalkIns)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return scanClinic(r.conn(ctx).QueryRow(ctx, `SELECT `+clinicCols+` FROM clinics WHERE id = $1`, id))
}

func (r *clinicRepoPG) Update(ctx context.Context, c *Clinic) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinics SET name=$2, address=$3, phone=$4, email=$5, city=$6, state=$7,
			zip_code=$8, established_date=$9, website_url=$10, care_type=$11,
			services_offered=$12, accepts_walk_ins=$13, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.Phone, c.Email, c.City, c.State, c.ZipCode,
		c.EstablishedDate, c.WebsiteURL, c.CareType, c.ServicesOffered, c.AcceptsWalkIns)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clinicRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clinicRepoPG) List(ctx context.Context, f ClinicFilter, limit, offset int) ([]*Clinic, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.City != "" {
		where += fmt.Sprintf(` AND city ILIKE $%d`, idx)
		args = append(args, f.City)
		idx++
	}
	if f.CareType != "" {
		where += fmt.Sprintf(` AND care_type = $%d`, idx)
		args = append(args, f.CareType)
		idx++
	}
	if f.AcceptsWalkIns != nil {
		where += fmt.Sprintf(` AND accepts_walk_ins = $%d`, idx)
		args = append(args, *f.AcceptsWalkIns)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR address ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinics`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clinicCols + ` FROM clinics` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *clinicRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clinics WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *clinicRepoPG) DoctorCount(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors WHERE clinic_id = $1`, id).Scan(&n)
	return n, err
}
