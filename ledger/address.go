package ledger

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Address is a lower-cased 0x-prefixed 20 byte hex account identifier.
type Address string

// ZeroAddress is the null holder; nothing may be minted or sent to it.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

var addressValidate = validator.New()

// ParseAddress validates s and returns its canonical form.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if err := addressValidate.Var(s, "required,eth_addr"); err != nil {
		return "", ErrInvalidAddress
	}
	return Address(strings.ToLower(s)), nil
}

// MustAddress is ParseAddress for constants; it panics on malformed input.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic("ledger: bad address " + s)
	}
	return a
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}
