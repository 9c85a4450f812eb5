package model

import "time"

// Contact is the data structure for a person that we know, as it is stored in the database.
type Contact struct {
	Id          int64     `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Address     string    `db:"address"`
	Email       string    `db:"email"`
	PhoneNumber string    `db:"phone_number"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ContactFields are the values of a contact that a client may set. The id and the timestamps are
// always assigned by the service. All fields are required.
type ContactFields struct {
	FirstName   string `json:"firstName"   db:"first_name"   validate:"required"`
	LastName    string `json:"lastName"    db:"last_name"    validate:"required"`
	Address     string `json:"address"     db:"address"      validate:"required"`
	Email       string `json:"email"       db:"email"        validate:"required"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number" validate:"required"`
}

// Fields returns the client-settable values of the contact.
func (c Contact) Fields() ContactFields {
	return ContactFields{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Address:     c.Address,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}
