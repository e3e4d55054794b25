package model

import "time"

// Vehicle is a customer's car registered on the portal. Every booking
// references the vehicle being tested. Vehicles are soft entities: the
// engine only validates ownership, never mechanical details.
//
// Fields:
//  ID           – primary key identifier.
//  CustomerID   – user who registered the vehicle.
//  Registration – number plate, unique per customer.
//  Make         – manufacturer name.
//  Model        – model name.
//  CreatedAt    – creation timestamp.
type Vehicle struct {
	ID           uint64    // vehicles.id
	CustomerID   uint64    // vehicles.customer_id
	Registration string    // vehicles.registration
	Make         string    // vehicles.make
	Model        string    // vehicles.model
	CreatedAt    time.Time // vehicles.created_at
}
