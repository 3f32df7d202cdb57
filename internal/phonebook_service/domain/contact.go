package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a contact.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryCompany  Category = "company"
)

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	return c == CategoryPersonal || c == CategoryCompany
}

// Contact is an address-book entry owned by a user. A contact's phone number
// may alias a user's personal mobile; owner resolution relies on that
// aliasing (users are checked first, then contacts).
type Contact struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email,omitempty"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewContact creates a Contact. ID is generated by the caller.
func NewContact(id, userID uuid.UUID, name, phoneNumber, email string, category Category) *Contact {
	now := time.Now().UTC()
	if !category.Valid() {
		category = CategoryPersonal
	}
	return &Contact{
		ID:          id,
		UserID:      userID,
		Name:        name,
		PhoneNumber: phoneNumber,
		Email:       email,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
