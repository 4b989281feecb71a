package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

const checksumSeparator = ": "

// Checksum is the fingerprint of a module's build inputs.
type Checksum struct {
	Name  string
	Value string
}

// NewChecksum creates a Checksum for the named module.
func NewChecksum(name, value string) Checksum {
	return Checksum{Name: name, Value: value}
}

// ParseChecksum parses the "Name: value" text form of a checksum.
func ParseChecksum(s string) (Checksum, error) {
	name, value, ok := strings.Cut(s, checksumSeparator)
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return Checksum{}, zerr.With(zerr.Wrap(ErrInvalidChecksum, "malformed checksum entry"), "checksum", s)
	}
	return Checksum{Name: name, Value: value}, nil
}

// String returns the "Name: value" text form.
func (c Checksum) String() string {
	return c.Name + checksumSeparator + c.Value
}

// Equal reports whether both checksums have the same text form.
func (c Checksum) Equal(other Checksum) bool {
	return c.String() == other.String()
}

// IsZero reports whether the checksum is unset.
func (c Checksum) IsZero() bool {
	return c.Name == "" && c.Value == ""
}
