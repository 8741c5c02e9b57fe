package script

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Valid(t *testing.T) {
	data := []byte(`
operations:
  - op: add
    contact: {id: "12345", first_name: John, last_name: Doe, phone: "1234567890", address: 123 Main Street}
  - op: update_phone
    id: "12345"
    value: "5555555555"
  - op: get
    id: "12345"
    want: {phone: "5555555555"}
  - op: delete
    id: "12345"
  - op: delete
    id: "12345"
    expect: rejected
  - op: get
    id: "12345"
    expect: absent
`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Operation{
		{Op: OpAdd, Contact: &ContactSpec{ID: "12345", FirstName: "John", LastName: "Doe", Phone: "1234567890", Address: "123 Main Street"}},
		{Op: OpUpdatePhone, ID: "12345", Value: "5555555555"},
		{Op: OpGet, ID: "12345", Want: &ContactSpec{Phone: "5555555555"}},
		{Op: OpDelete, ID: "12345"},
		{Op: OpDelete, ID: "12345", Expect: ExpectRejected},
		{Op: OpGet, ID: "12345", Expect: ExpectAbsent},
	}
	if diff := cmp.Diff(want, s.Operations); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_EmptyValuesAreNotParseErrors(t *testing.T) {
	// Empty ids and values must reach the service so its rejections can be exercised.
	data := []byte(`
operations:
  - op: delete
    id: ""
    expect: rejected
  - op: update_first_name
    id: "1"
    expect: rejected
`)
	if _, err := Parse(data); err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantSub string
	}{
		{name: "empty document", yaml: "", wantSub: "no operations"},
		{name: "empty list", yaml: "operations: []\n", wantSub: "no operations"},
		{name: "invalid YAML", yaml: "{{nope", wantSub: "parsing YAML"},
		{name: "unknown top-level key", yaml: "steps: []\n", wantSub: "parsing YAML"},
		{name: "unknown op key", yaml: "operations:\n  - op: get\n    key: x\n", wantSub: "parsing YAML"},
		{name: "unknown op", yaml: "operations:\n  - op: upsert\n", wantSub: "unknown op"},
		{name: "add without contact", yaml: "operations:\n  - op: add\n", wantSub: "requires a contact"},
		{name: "add with top-level id", yaml: "operations:\n  - op: add\n    id: x\n    contact: {id: x}\n", wantSub: "inside the contact"},
		{name: "contact on delete", yaml: "operations:\n  - op: delete\n    contact: {id: x}\n", wantSub: "only valid for add"},
		{name: "value on delete", yaml: "operations:\n  - op: delete\n    id: x\n    value: y\n", wantSub: "value is only valid"},
		{name: "want on update", yaml: "operations:\n  - op: update_phone\n    id: x\n    want: {phone: y}\n", wantSub: "want is only valid"},
		{name: "absent on delete", yaml: "operations:\n  - op: delete\n    id: x\n    expect: absent\n", wantSub: "expect for delete"},
		{name: "rejected on get", yaml: "operations:\n  - op: get\n    id: x\n    expect: rejected\n", wantSub: "expect for get"},
		{name: "want with absent", yaml: "operations:\n  - op: get\n    id: x\n    expect: absent\n    want: {id: x}\n", wantSub: "want cannot be combined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestParse_UnknownOpWrapsSentinel(t *testing.T) {
	_, err := Parse([]byte("operations:\n  - op: upsert\n"))
	if !errors.Is(err, ErrUnknownOp) {
		t.Errorf("error = %v, want ErrUnknownOp", err)
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"one.yaml": &fstest.MapFile{Data: []byte("operations:\n  - op: get\n    id: x\n    expect: absent\n")},
		"bad.yaml": &fstest.MapFile{Data: []byte("operations: []\n")},
	}

	s, err := Load(fsys, "one.yaml")
	if err != nil {
		t.Fatalf("Load(one.yaml) error = %v", err)
	}
	if len(s.Operations) != 1 {
		t.Errorf("operations = %d, want 1", len(s.Operations))
	}

	_, err = Load(fsys, "bad.yaml")
	if !errors.Is(err, ErrNoOperations) {
		t.Errorf("Load(bad.yaml) error = %v, want ErrNoOperations", err)
	}
	if err != nil && !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("Load(bad.yaml) error = %q, want file name", err)
	}

	if _, err := Load(fsys, "missing.yaml"); err == nil {
		t.Error("Load(missing.yaml) error = nil, want error")
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{Operation{Op: OpAdd, Contact: &ContactSpec{ID: "12345"}}, "add 12345"},
		{Operation{Op: OpUpdatePhone, ID: "7"}, "update_phone 7"},
		{Operation{Op: OpDelete}, `delete ""`},
		{Operation{Op: OpAdd}, `add ""`},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKind_Mutates(t *testing.T) {
	for _, k := range Kinds {
		if got, want := k.Mutates(), k != OpGet; got != want {
			t.Errorf("%s.Mutates() = %v, want %v", k, got, want)
		}
	}
	if Kind("bogus").Mutates() {
		t.Error("unknown kind should not mutate")
	}
}
