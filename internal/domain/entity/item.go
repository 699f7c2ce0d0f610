// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Item is the concrete owned resource of the service.
// OwnerID is assigned once at creation and never changes afterwards.
type Item struct {
	ID          uuid.UUID // Unique identifier of the item.
	OwnerID     uuid.UUID // The account that created and owns the item.
	Title       string    // Short human-readable title.
	Description string    // Optional free-form description.
	CreatedAt   time.Time // Timestamp of when the item was created.
	UpdatedAt   time.Time // Timestamp of the last modification.
}

// IsOwnedBy reports whether the item belongs to the given account.
func (i *Item) IsOwnedBy(accountID uuid.UUID) bool {
	return i.OwnerID == accountID
}
