package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const prescriptionCols = `id, user_id, patient_id, status, notes, created_at, updated_at`

func (r *repoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.UserID, &p.PatientID, &p.Status, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

// Create inserts the prescription and its medication lines in one
// transaction.
func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescriptions (id, user_id, patient_id, status, notes)
			VALUES ($1,$2,$3,$4,$5)`,
			p.ID, p.UserID, p.PatientID, p.Status, p.Notes)
		if err != nil {
			return err
		}
		for _, m := range p.Medications {
			m.PrescriptionID = p.ID
			if err := r.AddMedication(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Prescription, error) {
	p, err := r.scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		return nil, err
	}
	meds, err := r.GetMedications(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Medications = meds
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET notes=$3, updated_at=NOW()
		WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET status=$3, updated_at=NOW()
		WHERE id = $1 AND user_id = $2`,
		id, ownerID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM prescriptions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{ownerID}
	if patientID != uuid.Nil {
		args = append(args, patientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM prescriptions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		prescriptionCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Medications ===========

func (r *repoPG) AddMedication(ctx context.Context, m *PrescriptionMedication) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription_medications (id, prescription_id, medication_name,
			dosage, frequency, duration_days)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.PrescriptionID, m.MedicationName, m.Dosage, m.Frequency, m.DurationDays)
	return err
}

func (r *repoPG) GetMedications(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionMedication, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, medication_name, dosage, frequency, duration_days
		FROM prescription_medications WHERE prescription_id = $1
		ORDER BY medication_name`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PrescriptionMedication
	for rows.Next() {
		var m PrescriptionMedication
		if err := rows.Scan(&m.ID, &m.PrescriptionID, &m.MedicationName,
			&m.Dosage, &m.Frequency, &m.DurationDays); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}
