package model

import "time"

// User represents a portal account as stored in the `users` table. The role
// determines which API surface the account can reach: customers book
// appointments, garage accounts manage availability and bookings at their
// garage, and admins operate approval and quota top-ups. JSON tags are
// omitted because these structs are used internally by the repository layer;
// handlers define separate response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name.
//  Role         – role name (CUSTOMER, GARAGE or ADMIN).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Roles accepted by the authorization middleware.
const (
	RoleCustomer = "CUSTOMER"
	RoleGarage   = "GARAGE"
	RoleAdmin    = "ADMIN"
)
