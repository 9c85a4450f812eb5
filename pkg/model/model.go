package model

import "time"

// Contact is the JSON representation of a contact as it is sent to and received from clients.
// The id is transported as a decimal string.
type Contact struct {
	Id          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Address     string    `json:"address"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Error is the JSON body of every failed request.
type Error struct {
	Error string `json:"error"`
}

// Message is the JSON body of a successful request that has no contact to return.
type Message struct {
	Message string `json:"message"`
}
