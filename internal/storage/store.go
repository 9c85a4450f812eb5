package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

const selectContacts = `
	SELECT id, first_name, last_name, address, email, phone_number, created_at, updated_at
	FROM contacts`

const insertContact = `
	INSERT INTO contacts (first_name, last_name, address, email, phone_number, created_at, updated_at)
	VALUES (:first_name, :last_name, :address, :email, :phone_number, :created_at, :updated_at)`

const updateContact = `
	UPDATE contacts
	SET first_name = :first_name,
		last_name = :last_name,
		address = :address,
		email = :email,
		phone_number = :phone_number,
		updated_at = :updated_at
	WHERE id = :id`

const selectOtherIdWithEmail = `
	SELECT id FROM contacts WHERE email = ? AND id <> ? LIMIT 1`

const deleteWhereId = `
	DELETE FROM contacts WHERE id = ?`

// Store keeps contacts in a relational database. It enforces that every field is set and that no
// two contacts share an email address.
type Store struct {
	db       *sqlx.DB
	validate *validator.Validate
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the source of the current time used for the timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a store on top of the database. The database argument can be a real database for
// production use or a mock database within unit tests.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListAll returns all contacts, the most recently created first.
func (s *Store) ListAll(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts, selectContacts+`
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	for i := range contacts {
		normalize(&contacts[i])
	}
	return contacts, nil
}

// GetByID returns the contact with the id, or a *NotFoundError.
func (s *Store) GetByID(ctx context.Context, id int64) (model.Contact, error) {
	return getByID(ctx, s.db, id)
}

// Create validates the fields, checks that the email is not used yet and stores a new contact.
// The returned contact carries the assigned id and timestamps.
func (s *Store) Create(ctx context.Context, fields model.ContactFields) (model.Contact, error) {
	if err := s.validateFields(fields); err != nil {
		return model.Contact{}, err
	}
	now := s.timestamp()
	contact := model.Contact{
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		Address:     fields.Address,
		Email:       fields.Email,
		PhoneNumber: fields.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkEmailFree(ctx, tx, fields.Email, 0); err != nil {
			return err
		}
		result, err := tx.NamedExecContext(ctx, insertContact, &contact)
		if err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
		contact.Id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read id of new contact: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Contact{}, s.duplicateOr(err, fields.Email)
	}
	return contact, nil
}

// Update replaces the fields of the contact with the id. The id and the creation time stay as
// they are; the update time is refreshed.
func (s *Store) Update(ctx context.Context, id int64, fields model.ContactFields) (model.Contact, error) {
	var updated model.Contact
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.validateFields(fields); err != nil {
			return err
		}
		if err := checkEmailFree(ctx, tx, fields.Email, id); err != nil {
			return err
		}

		updated = existing
		updated.FirstName = fields.FirstName
		updated.LastName = fields.LastName
		updated.Address = fields.Address
		updated.Email = fields.Email
		updated.PhoneNumber = fields.PhoneNumber
		updated.UpdatedAt = s.timestamp()
		if updated.UpdatedAt.Before(existing.UpdatedAt) {
			updated.UpdatedAt = existing.UpdatedAt
		}

		result, err := tx.NamedExecContext(ctx, updateContact, &updated)
		if err != nil {
			return fmt.Errorf("update contact %d: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update contact %d: %w", id, err)
		}
		if rowsAffected == 0 {
			return &NotFoundError{Id: id}
		}
		return nil
	})
	if err != nil {
		return model.Contact{}, s.duplicateOr(err, fields.Email)
	}
	return updated, nil
}

// Delete removes the contact with the id permanently, or returns a *NotFoundError.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, deleteWhereId, id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return &NotFoundError{Id: id}
	}
	return nil
}

// inTx runs fn inside a transaction. The transaction is committed if fn succeeds and rolled back
// otherwise.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// duplicateOr turns a violation of the unique email index into a *DuplicateEmailError. This
// covers a concurrent writer that took the email between our check and our write.
func (s *Store) duplicateOr(err error, email string) error {
	if isUniqueViolation(s.db.DriverName(), err) {
		return &DuplicateEmailError{Email: email}
	}
	return err
}

// timestamp returns the current time in the precision that all supported databases store.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func getByID(ctx context.Context, q sqlx.QueryerContext, id int64) (model.Contact, error) {
	var contact model.Contact
	err := sqlx.GetContext(ctx, q, &contact, selectContacts+`
		WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, &NotFoundError{Id: id}
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("select contact %d: %w", id, err)
	}
	normalize(&contact)
	return contact, nil
}

// checkEmailFree returns a *DuplicateEmailError if a contact other than the one with exceptId
// uses the email. Ids start at 1, so an exceptId of 0 checks against all contacts.
func checkEmailFree(ctx context.Context, tx *sqlx.Tx, email string, exceptId int64) error {
	var otherId int64
	err := tx.GetContext(ctx, &otherId, selectOtherIdWithEmail, email, exceptId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up email: %w", err)
	}
	return &DuplicateEmailError{Email: email}
}

// normalize puts the timestamps read from the database into UTC.
func normalize(contact *model.Contact) {
	contact.CreatedAt = contact.CreatedAt.UTC()
	contact.UpdatedAt = contact.UpdatedAt.UTC()
}
