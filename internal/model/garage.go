package model

import "time"

// ApprovalStatus enumerates the admin review states of a garage. Only
// APPROVED garages may accept reservations; the approval flow itself lives
// outside the engine and is surfaced here as a field the engine reads.
type ApprovalStatus string

const (
	ApprovalPending       ApprovalStatus = "PENDING"
	ApprovalApproved      ApprovalStatus = "APPROVED"
	ApprovalInfoRequested ApprovalStatus = "INFO_REQUESTED"
	ApprovalRejected      ApprovalStatus = "REJECTED"
)

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalInfoRequested, ApprovalRejected:
		return true
	}
	return false
}

// Garage represents an MOT testing station owned by a portal user. A garage
// publishes availability slots and accepts bookings up to its purchased
// quota. Garages are never deleted while bookings reference them.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user ID of the garage owner.
//  Name           – display name of the garage.
//  Postcode       – location postcode shown to customers.
//  ApprovalStatus – admin review state; bookings require APPROVED.
//  PurchasedQuota – booking ceiling bought by the garage. Zero means quota
//                   enforcement is not configured for this garage.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Garage struct {
	ID             uint64         // garages.id
	OwnerID        uint64         // garages.owner_id
	Name           string         // garages.name
	Postcode       string         // garages.postcode
	ApprovalStatus ApprovalStatus // garages.approval_status
	PurchasedQuota int            // garages.purchased_quota
	CreatedAt      time.Time      // garages.created_at
	UpdatedAt      time.Time      // garages.updated_at
}
