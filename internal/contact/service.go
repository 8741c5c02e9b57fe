package contact

import (
	"errors"
	"fmt"

	"github.com/smileynet/contacts/internal/logger"
)

// Service owns a set of contacts keyed by ID.
// It is not safe for concurrent use; callers sharing a Service across
// goroutines must serialize access themselves.
type Service struct {
	contacts map[string]*Contact
	log      *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for debug events. Defaults to logger.Nop().
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates an empty Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		contacts: make(map[string]*Contact),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddContact stores c under its ID. An existing entry is never overwritten.
//
// The service takes ownership of c: later changes go through the Update
// methods, and c cannot be added to another Service until it is deleted
// from this one.
func (s *Service) AddContact(c *Contact) error {
	if c == nil {
		return s.reject("add", "", ErrNilContact)
	}
	id := c.ID()
	if id == "" {
		return s.reject("add", id, ErrMissingID)
	}
	if _, ok := s.contacts[id]; ok {
		return s.reject("add", id, fmt.Errorf("%w: %q", ErrDuplicateID, id))
	}
	if c.owner != nil && c.owner != s {
		return s.reject("add", id, fmt.Errorf("%w: %q", ErrOwned, id))
	}
	c.owner = s
	s.contacts[id] = c
	s.log.Debug("contact added", "id", id, "size", len(s.contacts))
	return nil
}

// DeleteContact removes the contact stored under id and releases it.
func (s *Service) DeleteContact(id string) error {
	c, err := s.existing(id)
	if err != nil {
		return s.reject("delete", id, err)
	}
	c.owner = nil
	delete(s.contacts, id)
	s.log.Debug("contact deleted", "id", id, "size", len(s.contacts))
	return nil
}

// UpdateFirstName sets the first name of the contact stored under id.
func (s *Service) UpdateFirstName(id, v string) error {
	return s.update(id, FieldFirstName, v, (*Contact).SetFirstName)
}

// UpdateLastName sets the last name of the contact stored under id.
func (s *Service) UpdateLastName(id, v string) error {
	return s.update(id, FieldLastName, v, (*Contact).SetLastName)
}

// UpdatePhone sets the phone number of the contact stored under id.
func (s *Service) UpdatePhone(id, v string) error {
	return s.update(id, FieldPhone, v, (*Contact).SetPhone)
}

// UpdateAddress sets the address of the contact stored under id.
func (s *Service) UpdateAddress(id, v string) error {
	return s.update(id, FieldAddress, v, (*Contact).SetAddress)
}

// GetContact returns the contact stored under id, if any.
func (s *Service) GetContact(id string) (*Contact, bool) {
	c, ok := s.contacts[id]
	return c, ok
}

// Len reports how many contacts are stored.
func (s *Service) Len() int {
	return len(s.contacts)
}

// update resolves id and applies set, returning the setter's error unchanged.
func (s *Service) update(id, field, v string, set func(*Contact, string) error) error {
	c, err := s.existing(id)
	if err != nil {
		return s.reject("update", id, err)
	}
	if err := set(c, v); err != nil {
		return s.reject("update", id, err)
	}
	s.log.Debug("contact updated", "id", id, "field", field)
	return nil
}

// existing is the shared lookup for delete and update.
func (s *Service) existing(id string) (*Contact, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c, nil
}

// reject logs a refused operation. Field errors are logged by field name and
// reason only, since their message carries the rejected value.
func (s *Service) reject(op, id string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		s.log.Debug("contact rejected", "op", op, "id", id, "field", fe.Field, "reason", fe.Reason)
		return err
	}
	s.log.Debug("contact rejected", "op", op, "id", id, "error", err)
	return err
}
