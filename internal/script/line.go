package script

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyLine indicates a blank shell line.
var ErrEmptyLine = errors.New("script: empty line")

// UsageError reports a shell line that does not match its command's grammar.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Usage)
}

// LineCommand documents one shell command.
type LineCommand struct {
	Name  string
	Usage string
	Help  string
}

// LineCommands lists the shell grammar accepted by ParseLine.
var LineCommands = []LineCommand{
	{Name: "add", Usage: "add <id> <first> <last> <phone> <address...>", Help: "add a contact"},
	{Name: "delete", Usage: "delete <id>", Help: "delete a contact"},
	{Name: "first", Usage: "first <id> <name>", Help: "update first name"},
	{Name: "last", Usage: "last <id> <name>", Help: "update last name"},
	{Name: "phone", Usage: "phone <id> <digits>", Help: "update phone"},
	{Name: "address", Usage: "address <id> <address...>", Help: "update address"},
	{Name: "get", Usage: "get <id>", Help: "show a contact"},
}

var updateCommands = map[string]Kind{
	"first":   OpUpdateFirstName,
	"last":    OpUpdateLastName,
	"phone":   OpUpdatePhone,
	"address": OpUpdateAddress,
}

// ParseLine parses one shell command into an Operation. The last argument of
// add and the update commands takes the rest of the line, so addresses may
// contain spaces.
func ParseLine(line string) (Operation, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Operation{}, ErrEmptyLine
	}

	cmd := strings.ToLower(fieldsN(line, 2)[0])
	switch cmd {
	case "add":
		f := fieldsN(line, 6)
		if len(f) != 6 {
			return Operation{}, usage("add")
		}
		return Operation{
			Op: OpAdd,
			Contact: &ContactSpec{
				ID:        f[1],
				FirstName: f[2],
				LastName:  f[3],
				Phone:     f[4],
				Address:   f[5],
			},
		}, nil

	case "delete", "del", "rm":
		f := strings.Fields(line)
		if len(f) != 2 {
			return Operation{}, usage("delete")
		}
		return Operation{Op: OpDelete, ID: f[1]}, nil

	case "get", "show":
		f := strings.Fields(line)
		if len(f) != 2 {
			return Operation{}, usage("get")
		}
		return Operation{Op: OpGet, ID: f[1]}, nil
	}

	if kind, ok := updateCommands[cmd]; ok {
		f := fieldsN(line, 3)
		if len(f) != 3 {
			return Operation{}, usage(cmd)
		}
		return Operation{Op: kind, ID: f[1], Value: f[2]}, nil
	}

	return Operation{}, fmt.Errorf("%w %q (try: help)", ErrUnknownOp, cmd)
}

func usage(name string) error {
	for _, c := range LineCommands {
		if c.Name == name {
			return &UsageError{Command: name, Usage: c.Usage}
		}
	}
	return &UsageError{Command: name, Usage: name}
}

// fieldsN splits s into at most n whitespace-separated fields. The last field
// keeps the remainder of s with its inner spacing intact.
func fieldsN(s string, n int) []string {
	var out []string
	s = strings.TrimSpace(s)
	for len(out) < n-1 && s != "" {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return append(out, s)
		}
		out = append(out, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
