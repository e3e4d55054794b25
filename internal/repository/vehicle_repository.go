package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// ErrVehicleNotFound is returned when a vehicle lookup resolves no row.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepo provides data access to the vehicles table.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// Create inserts a vehicle for a customer and populates the generated ID.
// The (customer_id, registration) unique index reports re-registration of the
// same plate as ErrDuplicateVehicle.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	const q = `INSERT INTO vehicles (customer_id, registration, make, model) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.CustomerID, v.Registration, v.Make, v.Model)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateVehicle
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetForCustomer loads a vehicle and enforces ownership: a vehicle belonging
// to a different customer is reported as ErrForbidden so handlers can answer
// 403 rather than leaking existence.
func (r *VehicleRepo) GetForCustomer(ctx context.Context, vehicleID, customerID uint64) (*model.Vehicle, error) {
	const q = `SELECT id, customer_id, registration, make, model, created_at
	           FROM vehicles WHERE id = ?`
	var v model.Vehicle
	err := r.db.QueryRowContext(ctx, q, vehicleID).Scan(
		&v.ID, &v.CustomerID, &v.Registration, &v.Make, &v.Model, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	if v.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return &v, nil
}

// ListByCustomer returns all vehicles registered by the customer.
func (r *VehicleRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Vehicle, error) {
	const q = `SELECT id, customer_id, registration, make, model, created_at
	           FROM vehicles WHERE customer_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Registration, &v.Make, &v.Model, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}
