// Package script parses and runs batches of contact operations against a
// contact.Service. Scripts come from YAML files or single shell lines.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names an operation.
type Kind string

const (
	OpAdd             Kind = "add"
	OpDelete          Kind = "delete"
	OpUpdateFirstName Kind = "update_first_name"
	OpUpdateLastName  Kind = "update_last_name"
	OpUpdatePhone     Kind = "update_phone"
	OpUpdateAddress   Kind = "update_address"
	OpGet             Kind = "get"
)

// Kinds lists every operation kind.
var Kinds = []Kind{OpAdd, OpDelete, OpUpdateFirstName, OpUpdateLastName, OpUpdatePhone, OpUpdateAddress, OpGet}

// Mutates reports whether the operation changes the directory.
func (k Kind) Mutates() bool {
	switch k {
	case OpAdd, OpDelete, OpUpdateFirstName, OpUpdateLastName, OpUpdatePhone, OpUpdateAddress:
		return true
	default:
		return false
	}
}

// Expect is the outcome a step anticipates.
type Expect string

const (
	ExpectOK       Expect = "ok"       // Mutation applied, or get found the contact.
	ExpectRejected Expect = "rejected" // Mutation refused by the service.
	ExpectAbsent   Expect = "absent"   // Get found nothing.
)

// ErrNoOperations indicates a script with an empty operations list.
var ErrNoOperations = errors.New("script: no operations defined")

// ErrUnknownOp indicates an operation kind the runner does not know.
var ErrUnknownOp = errors.New("script: unknown op")

// ContactSpec carries contact fields in scripts. Used for add payloads and
// get expectations; in a want block, empty fields are not compared.
type ContactSpec struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Phone     string `yaml:"phone"`
	Address   string `yaml:"address"`
}

// Operation is one step of a script.
type Operation struct {
	Op      Kind         `yaml:"op"`
	ID      string       `yaml:"id,omitempty"`
	Value   string       `yaml:"value,omitempty"`
	Contact *ContactSpec `yaml:"contact,omitempty"`
	Want    *ContactSpec `yaml:"want,omitempty"`
	Expect  Expect       `yaml:"expect,omitempty"`
}

// Expectation returns the step's expected outcome, defaulting to ExpectOK.
func (o Operation) Expectation() Expect {
	if o.Expect == "" {
		return ExpectOK
	}
	return o.Expect
}

// TargetID returns the contact ID the operation addresses.
func (o Operation) TargetID() string {
	if o.Op == OpAdd && o.Contact != nil {
		return o.Contact.ID
	}
	return o.ID
}

// String renders the operation as "<op> <id>" for status lines.
func (o Operation) String() string {
	id := o.TargetID()
	if id == "" {
		return string(o.Op) + ` ""`
	}
	return string(o.Op) + " " + id
}

// Script is an ordered list of operations applied to one fresh directory.
type Script struct {
	Operations []Operation `yaml:"operations"`
}

// Load reads and parses a script from fsys.
func Load(fsys fs.FS, name string) (*Script, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("script: reading %s: %w", name, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Parse parses a script from YAML bytes. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoOperations
		}
		return nil, fmt.Errorf("script: parsing YAML: %w", err)
	}

	if len(s.Operations) == 0 {
		return nil, ErrNoOperations
	}

	for i, op := range s.Operations {
		if err := Validate(op); err != nil {
			return nil, fmt.Errorf("script: operations[%d] %q: %w", i, op.Op, err)
		}
	}
	return &s, nil
}

// Validate checks an operation's shape. Empty IDs and values are allowed:
// rejecting them is the service's job.
func Validate(op Operation) error {
	if !isKnown(op.Op) {
		return fmt.Errorf("%w %q (want %s)", ErrUnknownOp, op.Op, kindList())
	}

	switch op.Op {
	case OpAdd:
		if op.Contact == nil {
			return errors.New("add requires a contact block")
		}
		if op.ID != "" {
			return errors.New("add takes its id inside the contact block")
		}
	default:
		if op.Contact != nil {
			return fmt.Errorf("contact block is only valid for %s", OpAdd)
		}
	}

	if op.Value != "" && !isUpdate(op.Op) {
		return errors.New("value is only valid for update operations")
	}

	if op.Op == OpGet {
		switch op.Expectation() {
		case ExpectOK:
		case ExpectAbsent:
			if op.Want != nil {
				return errors.New("want cannot be combined with expect: absent")
			}
		default:
			return fmt.Errorf("expect for get must be %q or %q, got %q", ExpectOK, ExpectAbsent, op.Expect)
		}
		return nil
	}

	if op.Want != nil {
		return fmt.Errorf("want is only valid for %s", OpGet)
	}
	switch op.Expectation() {
	case ExpectOK, ExpectRejected:
		return nil
	default:
		return fmt.Errorf("expect for %s must be %q or %q, got %q", op.Op, ExpectOK, ExpectRejected, op.Expect)
	}
}

func isKnown(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func isUpdate(k Kind) bool {
	switch k {
	case OpUpdateFirstName, OpUpdateLastName, OpUpdatePhone, OpUpdateAddress:
		return true
	default:
		return false
	}
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
