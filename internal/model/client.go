package model

import "time"

// Client is a borrower profile as stored in the `clients` table. Clients are
// referenced by loans but never owned by them; deleting a loan leaves its
// clients in place, and deleting a client leaves dangling references on any
// loan that listed it.
type Client struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Gender    string    `json:"gender"`
	Country   string    `json:"country"`
	State     string    `json:"state"`
	Address   string    `json:"address"`
	ZipCode   string    `json:"zipCode"`
	IDNumber  string    `json:"idNumber"` // national/legal id, unique
	UserID    uint64    `json:"userId"`   // staff member who registered the client
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
