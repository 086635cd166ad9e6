package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

var ErrInvalidCode = apperror.Policy(http.StatusUnauthorized, "invalid_code", "invalid access code")

// Identity is the result of validating a presented access code.
type Identity struct {
	Code    string // tenant code, or the administrator name
	IsAdmin bool
}

// Validator checks codes against the static tenant and administrator tables.
type Validator struct {
	tenants map[string]struct{}
	admins  map[string]string // name -> bcrypt hash of PIN
	hasher  auth.PINHasher
}

// Normalize trims a code, upper-cases it and collapses inner whitespace.
func Normalize(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), " ")
}

func splitAdminCode(code string) (name, pin string, ok bool) {
	i := strings.LastIndex(code, "-")
	if i <= 0 || i == len(code)-1 {
		return "", "", false
	}
	return code[:i], code[i+1:], true
}

// NewValidator builds a validator from tenant codes and NAME-PIN admin codes.
// PINs are kept only as hashes.
func NewValidator(tenants, adminCodes []string, hasher auth.PINHasher) (*Validator, error) {
	v := &Validator{
		tenants: make(map[string]struct{}, len(tenants)),
		admins:  make(map[string]string, len(adminCodes)),
		hasher:  hasher,
	}
	for _, t := range tenants {
		v.tenants[Normalize(t)] = struct{}{}
	}
	for _, code := range adminCodes {
		name, pin, ok := splitAdminCode(Normalize(code))
		if !ok {
			return nil, fmt.Errorf("admin code %q is not NAME-PIN", code)
		}
		if _, isTenant := v.tenants[name]; isTenant {
			return nil, fmt.Errorf("admin name %q collides with a tenant code", name)
		}
		hash, err := hasher.Hash(pin)
		if err != nil {
			return nil, fmt.Errorf("hash admin pin: %w", err)
		}
		v.admins[name] = hash
	}
	return v, nil
}

func (v *Validator) Validate(code string) (Identity, error) {
	code = Normalize(code)
	if code == "" {
		return Identity{}, ErrInvalidCode
	}
	if _, ok := v.tenants[code]; ok {
		return Identity{Code: code}, nil
	}

	name, pin, ok := splitAdminCode(code)
	if !ok {
		return Identity{}, ErrInvalidCode
	}
	hash, ok := v.admins[name]
	if !ok {
		return Identity{}, ErrInvalidCode
	}
	if err := v.hasher.Compare(hash, pin); err != nil {
		return Identity{}, errors.Join(ErrInvalidCode, err)
	}
	return Identity{Code: name, IsAdmin: true}, nil
}
