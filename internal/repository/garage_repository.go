package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// GarageRepo provides data access to the garages table. The purchased quota
// and approval status are written only by the privileged admin operations;
// the engine reads them, with GetForUpdateTx doubling as the per-garage
// admission lock inside a reservation.
type GarageRepo struct {
	db *sql.DB
}

// NewGarageRepo returns a new GarageRepo bound to the given database.
func NewGarageRepo(db *sql.DB) *GarageRepo { return &GarageRepo{db: db} }

const garageColumns = `id, owner_id, name, postcode, approval_status, purchased_quota, created_at, updated_at`

func scanGarage(row rowScanner) (*model.Garage, error) {
	var g model.Garage
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Postcode,
		&g.ApprovalStatus, &g.PurchasedQuota, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByID loads a garage. Returns engine.ErrGarageNotFound when absent.
func (r *GarageRepo) GetByID(ctx context.Context, garageID uint64) (*model.Garage, error) {
	const q = `SELECT ` + garageColumns + ` FROM garages WHERE id = ?`
	g, err := scanGarage(r.db.QueryRowContext(ctx, q, garageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrGarageNotFound
		}
		return nil, err
	}
	return g, nil
}

// GetForUpdateTx loads the garage row and holds it exclusively until the
// transaction ends. The engine takes this lock before the quota check so that
// the consumed count and the slot claim sit on one consistent snapshot.
func (r *GarageRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, garageID uint64) (*model.Garage, error) {
	const q = `SELECT ` + garageColumns + ` FROM garages WHERE id = ? FOR UPDATE`
	g, err := scanGarage(tx.QueryRowContext(ctx, q, garageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrGarageNotFound
		}
		return nil, err
	}
	return g, nil
}

// GetByOwner loads the garage belonging to a garage-role user. Returns
// engine.ErrGarageNotFound when the user owns no garage.
func (r *GarageRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Garage, error) {
	const q = `SELECT ` + garageColumns + ` FROM garages WHERE owner_id = ?`
	g, err := scanGarage(r.db.QueryRowContext(ctx, q, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrGarageNotFound
		}
		return nil, err
	}
	return g, nil
}

// Create inserts a garage for the given owner with approval PENDING and no
// purchased quota. Used by the garage onboarding flow.
func (r *GarageRepo) Create(ctx context.Context, g *model.Garage) error {
	const q = `INSERT INTO garages (owner_id, name, postcode, approval_status, purchased_quota)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.OwnerID, g.Name, g.Postcode,
		model.ApprovalPending, 0)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	g.ApprovalStatus = model.ApprovalPending
	return nil
}

// AddQuota tops up the purchased quota by delta. The increment goes through
// SQL arithmetic rather than read-modify-write so concurrent top-ups cannot
// lose updates. Returns the new ceiling.
func (r *GarageRepo) AddQuota(ctx context.Context, garageID uint64, delta int) (int, error) {
	const upd = `UPDATE garages SET purchased_quota = purchased_quota + ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, upd, delta, garageID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, engine.ErrGarageNotFound
	}
	const sel = `SELECT purchased_quota FROM garages WHERE id = ?`
	var quota int
	if err := r.db.QueryRowContext(ctx, sel, garageID).Scan(&quota); err != nil {
		return 0, err
	}
	return quota, nil
}

// SetApproval records the admin's decision on a garage.
func (r *GarageRepo) SetApproval(ctx context.Context, garageID uint64, status model.ApprovalStatus) error {
	const q = `UPDATE garages SET approval_status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, garageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrGarageNotFound
	}
	return nil
}

// ListApproved returns approved garages for the public browse endpoint.
func (r *GarageRepo) ListApproved(ctx context.Context) ([]model.Garage, error) {
	const q = `SELECT ` + garageColumns + ` FROM garages WHERE approval_status = 'APPROVED' ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	garages := make([]model.Garage, 0)
	for rows.Next() {
		g, err := scanGarage(rows)
		if err != nil {
			return nil, err
		}
		garages = append(garages, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return garages, nil
}
