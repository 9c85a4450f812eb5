// Package randomgen produces plausible contact data for load tests and integration tests.
package randomgen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

var firstNames = []string{
	"Adam", "Berta", "Carla", "David", "Dirk", "Erika", "Hans", "Jana", "Jiri", "Klara",
	"Lukas", "Marie", "Pavla", "Petr", "Rudi", "Sophie", "Tomas", "Ursula", "Vaclav", "Zuzana",
}

var lastNames = []string{
	"Dvorak", "Fischer", "Horak", "Kral", "Krummacker", "Meyer", "Mustermann", "Novak", "Schmidt",
	"Schneider", "Svoboda", "Vogel", "Völler", "Wagner", "Weber", "Wurst",
}

var streets = []string{
	"Hauptstraße", "Karlova", "Main St", "Nerudova", "Parizska", "Schillerweg", "Vinohradska",
}

var cities = []string{
	"Brno", "Berlin", "Hamburg", "Ostrava", "Plzen", "Praha", "Springfield",
}

// PickFirstName returns a random first name.
func PickFirstName() string {
	return firstNames[rand.IntN(len(firstNames))]
}

// PickLastName returns a random last name.
func PickLastName() string {
	return lastNames[rand.IntN(len(lastNames))]
}

// Address returns a random street address.
func Address() string {
	return fmt.Sprintf("%s %d, %s", streets[rand.IntN(len(streets))], 1+rand.IntN(200), cities[rand.IntN(len(cities))])
}

// PhoneNumber returns a random phone number in the Czech format.
func PhoneNumber() string {
	return fmt.Sprintf("+420 %03d %03d %03d", rand.IntN(1000), rand.IntN(1000), rand.IntN(1000))
}

// UniqueEmail returns an email address for the name that no other call returns.
func UniqueEmail(firstName, lastName string) string {
	local := strings.ToLower(firstName + "." + lastName)
	local = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r == '.' {
			return r
		}
		return -1
	}, local)
	return fmt.Sprintf("%s.%s@example.com", local, uuid.NewString()[:13])
}

// ContactFields returns a complete set of random contact fields with a unique email address.
func ContactFields() model.ContactFields {
	first, last := PickFirstName(), PickLastName()
	return model.ContactFields{
		FirstName:   first,
		LastName:    last,
		Address:     Address(),
		Email:       UniqueEmail(first, last),
		PhoneNumber: PhoneNumber(),
	}
}
