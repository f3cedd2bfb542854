package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/platform/db"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	if c := db.QuerierFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, doctor_id, patient_id, start_time, duration_minutes,
	status, appointment_type, notes, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.DurationMinutes,
		&a.Status, &a.AppointmentType, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

// translateConflict converts an exclusion-constraint violation (raised by the
// btree_gist EXCLUDE constraints on appointments) into a ConflictError. The
// advisory-lock transaction normally prevents reaching the constraint at all;
// this is the storage-level backstop.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
		if pgErr.ConstraintName == "appointments_no_patient_overlap" {
			return &ConflictError{PatientConflicts: []uuid.UUID{}}
		}
		return &ConflictError{DoctorConflicts: []uuid.UUID{}}
	}
	return err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, start_time, duration_minutes,
			status, appointment_type, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.DoctorID, a.PatientID, a.StartTime, a.DurationMinutes,
		a.Status, a.AppointmentType, a.Notes)
	if err != nil {
		return translateConflict(err)
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET doctor_id=$2, patient_id=$3, start_time=$4, duration_minutes=$5,
			status=$6, appointment_type=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.PatientID, a.StartTime, a.DurationMinutes,
		a.Status, a.AppointmentType, a.Notes)
	if err != nil {
		return translateConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE 1=1`
	join := ``
	var args []interface{}
	idx := 1

	if f.DoctorID != nil {
		where += fmt.Sprintf(` AND a.doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	if f.PatientID != nil {
		where += fmt.Sprintf(` AND a.patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Type != "" {
		where += fmt.Sprintf(` AND a.appointment_type = $%d`, idx)
		args = append(args, f.Type)
		idx++
	}
	if f.Date != nil {
		where += fmt.Sprintf(` AND a.start_time >= $%d AND a.start_time < $%d`, idx, idx+1)
		y, m, d := f.Date.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, f.Date.Location())
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
		idx += 2
	}
	if f.StartDate != nil {
		where += fmt.Sprintf(` AND a.start_time >= $%d`, idx)
		args = append(args, *f.StartDate)
		idx++
	}
	if f.EndDate != nil {
		where += fmt.Sprintf(` AND a.start_time < $%d`, idx)
		args = append(args, *f.EndDate)
		idx++
	}
	if f.MinDuration > 0 {
		where += fmt.Sprintf(` AND a.duration_minutes >= $%d`, idx)
		args = append(args, f.MinDuration)
		idx++
	}
	if f.MaxDuration > 0 {
		where += fmt.Sprintf(` AND a.duration_minutes <= $%d`, idx)
		args = append(args, f.MaxDuration)
		idx++
	}
	if f.ActiveOnly {
		where += ` AND a.status IN ('scheduled', 'confirmed')`
	}
	if f.From != nil {
		where += fmt.Sprintf(` AND a.start_time >= $%d`, idx)
		args = append(args, *f.From)
		idx++
	}
	if f.Search != "" {
		join = ` JOIN doctors d ON d.id = a.doctor_id JOIN patients p ON p.id = a.patient_id`
		where += fmt.Sprintf(` AND (d.first_name ILIKE $%d OR d.last_name ILIKE $%d OR p.first_name ILIKE $%d OR p.last_name ILIKE $%d)`, idx, idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM appointments a` + join + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	cols := `a.id, a.doctor_id, a.patient_id, a.start_time, a.duration_minutes,
		a.status, a.appointment_type, a.notes, a.created_at, a.updated_at`
	query := `SELECT ` + cols + ` FROM appointments a` + join + where +
		fmt.Sprintf(` ORDER BY a.start_time ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) listActive(ctx context.Context, column string, ownerID, exclude uuid.UUID) ([]*Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointments
		WHERE ` + column + ` = $1 AND status IN ('scheduled', 'confirmed') AND id <> $2
		ORDER BY start_time ASC`
	rows, err := r.conn(ctx).Query(ctx, query, ownerID, exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListActiveForDoctor(ctx context.Context, doctorID, exclude uuid.UUID) ([]*Appointment, error) {
	return r.listActive(ctx, "doctor_id", doctorID, exclude)
}

func (r *appointmentRepoPG) ListActiveForPatient(ctx context.Context, patientID, exclude uuid.UUID) ([]*Appointment, error) {
	return r.listActive(ctx, "patient_id", patientID, exclude)
}

func (r *appointmentRepoPG) ListForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE doctor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE patient_id = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ListCalendar(ctx context.Context, from, to time.Time) ([]*CalendarEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.start_time, a.duration_minutes,
			a.status, a.appointment_type, a.notes, a.created_at, a.updated_at,
			d.first_name || ' ' || d.last_name AS doctor_name,
			p.first_name || ' ' || p.last_name AS patient_name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.start_time >= $1 AND a.start_time < $2
		ORDER BY a.start_time ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		if err := rows.Scan(&e.ID, &e.DoctorID, &e.PatientID, &e.StartTime, &e.DurationMinutes,
			&e.Status, &e.AppointmentType, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&e.DoctorName, &e.PatientName); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Statistics(ctx context.Context, doctorID *uuid.UUID, w StatWindows) (*Statistics, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'no_show'),
			COUNT(*) FILTER (WHERE start_time >= $1 AND start_time < $2),
			COUNT(*) FILTER (WHERE start_time >= $3 AND start_time < $4),
			COUNT(*) FILTER (WHERE start_time >= $5 AND start_time < $6)
		FROM appointments`
	args := []interface{}{w.TodayStart, w.TodayEnd, w.WeekStart, w.WeekEnd, w.MonthStart, w.MonthEnd}
	if doctorID != nil {
		query += ` WHERE doctor_id = $7`
		args = append(args, *doctorID)
	}

	var st Statistics
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&st.Total, &st.Scheduled, &st.Confirmed, &st.Completed, &st.Cancelled, &st.NoShow,
		&st.Today, &st.ThisWeek, &st.ThisMonth)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// pgAtomic serializes booking writes with transaction-scoped advisory locks.
// Lock keys are sorted by the caller convention (doctor first, then patient)
// to keep lock ordering consistent across concurrent bookings.
type pgAtomic struct{ pool *pgxpool.Pool }

// advisoryClassScheduling namespaces this module's advisory locks.
const advisoryClassScheduling = 1

func NewPGAtomic(pool *pgxpool.Pool) Atomic { return &pgAtomic{pool: pool} }

func (a *pgAtomic) InTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, a.pool, func(ctx context.Context) error {
		for _, key := range lockKeys {
			if err := db.AdvisoryLock(ctx, advisoryClassScheduling, key); err != nil {
				return err
			}
		}
		return fn(ctx)
	})
}
