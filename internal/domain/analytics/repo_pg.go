package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL-backed aggregate data source.
func NewRepoPG(pool *pgxpool.Pool) StatsRepository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) CountPatients(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE user_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (r *repoPG) CountPatientsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3`,
		ownerID, from, to).Scan(&n)
	return n, err
}

func (r *repoPG) SumReceiptsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM receipts
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3`,
		ownerID, from, to).Scan(&sum)
	return sum, err
}

func (r *repoPG) CountReceiptsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM receipts
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3`,
		ownerID, from, to).Scan(&n)
	return n, err
}

func (r *repoPG) CountActivePrescriptions(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescriptions WHERE user_id = $1 AND status = 'active'`,
		ownerID).Scan(&n)
	return n, err
}

func (r *repoPG) MedicationCountsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]MedicationUsage, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pm.medication_name, COUNT(*)
		FROM prescription_medications pm
		JOIN prescriptions p ON p.id = pm.prescription_id
		WHERE p.user_id = $1 AND p.created_at >= $2 AND p.created_at <= $3
		GROUP BY pm.medication_name`,
		ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var usages []MedicationUsage
	for rows.Next() {
		var u MedicationUsage
		if err := rows.Scan(&u.Name, &u.Count); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
