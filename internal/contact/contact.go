// Package contact implements a validated contact record and an in-memory
// directory of contacts keyed by ID.
package contact

import (
	"fmt"
	"unicode/utf8"
)

// Field length limits, counted in characters (runes).
const (
	MaxIDLength      = 10
	MaxNameLength    = 10
	PhoneLength      = 10
	MaxAddressLength = 30
)

// Contact is one person's identifying and contact details.
//
// Invariants:
//   - ID is 1-10 characters and never changes after New
//   - FirstName and LastName are 1-10 characters
//   - Phone is exactly 10 ASCII digits
//   - Address is 1-30 characters
//
// Every setter validates before committing, so a failed update leaves the
// previous value in place.
type Contact struct {
	id        string
	firstName string
	lastName  string
	phone     string
	address   string

	owner *Service
}

// Fields is a plain snapshot of a Contact's values.
type Fields struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// New validates every field and returns a Contact, or the first violation
// found in the order id, first name, last name, phone, address.
func New(id, firstName, lastName, phone, address string) (*Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := validateName(FieldFirstName, firstName); err != nil {
		return nil, err
	}
	if err := validateName(FieldLastName, lastName); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	return &Contact{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		phone:     phone,
		address:   address,
	}, nil
}

// ID returns the contact's identifier.
func (c *Contact) ID() string { return c.id }

// FirstName returns the current first name.
func (c *Contact) FirstName() string { return c.firstName }

// LastName returns the current last name.
func (c *Contact) LastName() string { return c.lastName }

// Phone returns the current ten-digit phone number.
func (c *Contact) Phone() string { return c.phone }

// Address returns the current address.
func (c *Contact) Address() string { return c.address }

// Fields returns a copy of the current values.
func (c *Contact) Fields() Fields {
	return Fields{
		ID:        c.id,
		FirstName: c.firstName,
		LastName:  c.lastName,
		Phone:     c.phone,
		Address:   c.address,
	}
}

// SetFirstName replaces the first name. On error the contact is unchanged.
func (c *Contact) SetFirstName(v string) error {
	if err := validateName(FieldFirstName, v); err != nil {
		return err
	}
	c.firstName = v
	return nil
}

// SetLastName replaces the last name. On error the contact is unchanged.
func (c *Contact) SetLastName(v string) error {
	if err := validateName(FieldLastName, v); err != nil {
		return err
	}
	c.lastName = v
	return nil
}

// SetPhone replaces the phone number. On error the contact is unchanged.
func (c *Contact) SetPhone(v string) error {
	if err := validatePhone(v); err != nil {
		return err
	}
	c.phone = v
	return nil
}

// SetAddress replaces the address. On error the contact is unchanged.
func (c *Contact) SetAddress(v string) error {
	if err := validateAddress(v); err != nil {
		return err
	}
	c.address = v
	return nil
}

func validateID(v string) error {
	return checkLength(FieldID, v, MaxIDLength)
}

func validateName(field, v string) error {
	return checkLength(field, v, MaxNameLength)
}

func validateAddress(v string) error {
	return checkLength(FieldAddress, v, MaxAddressLength)
}

func validatePhone(v string) error {
	if utf8.RuneCountInString(v) != PhoneLength {
		return &FieldError{Field: FieldPhone, Value: v, Reason: fmt.Sprintf("must be exactly %d digits", PhoneLength)}
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return &FieldError{Field: FieldPhone, Value: v, Reason: "must contain only digits"}
		}
	}
	return nil
}

// checkLength rejects empty values and values longer than max characters.
func checkLength(field, v string, max int) error {
	n := utf8.RuneCountInString(v)
	if n == 0 {
		return &FieldError{Field: field, Value: v, Reason: "cannot be empty"}
	}
	if n > max {
		return &FieldError{Field: field, Value: v, Reason: fmt.Sprintf("must be %d characters or less", max)}
	}
	return nil
}
