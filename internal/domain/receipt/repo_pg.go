package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const receiptCols = `id, user_id, patient_id, amount, status, description, created_at, updated_at`

func (r *repoPG) scanReceipt(row pgx.Row) (*Receipt, error) {
	var rc Receipt
	err := row.Scan(&rc.ID, &rc.UserID, &rc.PatientID, &rc.Amount, &rc.Status,
		&rc.Description, &rc.CreatedAt, &rc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rc, err
}

func (r *repoPG) Create(ctx context.Context, rc *Receipt) error {
	rc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO receipts (id, user_id, patient_id, amount, status, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rc.ID, rc.UserID, rc.PatientID, rc.Amount, rc.Status, rc.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Receipt, error) {
	return r.scanReceipt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+receiptCols+` FROM receipts WHERE id = $1 AND user_id = $2`, id, ownerID))
}

func (r *repoPG) Update(ctx context.Context, rc *Receipt) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE receipts SET amount=$3, status=$4, description=$5, updated_at=NOW()
		WHERE id = $1 AND user_id = $2`,
		rc.ID, rc.UserID, rc.Amount, rc.Status, rc.Description)
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
		`DELETE FROM receipts WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Receipt, int, error) {
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
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM receipts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM receipts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		receiptCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Receipt
	for rows.Next() {
		rc, err := r.scanReceipt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rc)
	}
	return items, total, rows.Err()
}

// MonthlyTotals aggregates one month of receipts in a single scan. COALESCE
// keeps the revenue sum a decimal zero when the window is empty.
func (r *repoPG) MonthlyTotals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*MonthlyTotals, error) {
	var t MonthlyTotals
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM receipts
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3`,
		ownerID, from, to).
		Scan(&t.TotalRevenue, &t.Total, &t.Pending, &t.Paid, &t.Cancelled)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
