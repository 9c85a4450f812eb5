package storage

import "fmt"

// ValidationError reports a required contact field that is missing or empty. Field is the JSON
// name of the field, e.g. "firstName".
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// DuplicateEmailError reports that another contact already uses the email address.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("a contact with email %q already exists", e.Email)
}

// NotFoundError reports that no contact with the id exists.
type NotFoundError struct {
	Id int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact %d not found", e.Id)
}

// uniqueViolations holds one detector per registered database driver. Each returns true if the
// error is the driver's report of a violated UNIQUE index.
var uniqueViolations = map[string]func(error) bool{}

// registerUniqueViolation makes the detector for a driver known to isUniqueViolation.
func registerUniqueViolation(driverName string, detect func(error) bool) {
	uniqueViolations[driverName] = detect
}

// isUniqueViolation returns true if err reports a violated UNIQUE index.
func isUniqueViolation(driverName string, err error) bool {
	if err == nil {
		return false
	}
	detect, ok := uniqueViolations[driverName]
	return ok && detect(err)
}
