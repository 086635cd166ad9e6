package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(
		[]string{"APARTAMENT 1", "APARTAMENT 2"},
		[]string{"AGNIESZKA-111", "ADMIN-111"},
		auth.NewBcryptHasher(bcrypt.MinCost),
	)
	require.NoError(t, err)
	return v
}

func TestValidate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		code    string
		want    Identity
		wantErr bool
	}{
		{"tenant", "APARTAMENT 1", Identity{Code: "APARTAMENT 1"}, false},
		{"tenant normalized", "  apartament   2 ", Identity{Code: "APARTAMENT 2"}, false},
		{"admin", "agnieszka-111", Identity{Code: "AGNIESZKA", IsAdmin: true}, false},
		{"admin wrong pin", "AGNIESZKA-112", Identity{}, true},
		{"unknown admin", "MAREK-111", Identity{}, true},
		{"unknown tenant", "APARTAMENT 3", Identity{}, true},
		{"empty", "   ", Identity{}, true},
		{"dangling dash", "ADMIN-", Identity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewValidatorRejectsBadAdminCodes(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	_, err := NewValidator(nil, []string{"NOPIN"}, hasher)
	assert.Error(t, err)

	_, err = NewValidator([]string{"X"}, []string{"X-1"}, hasher)
	assert.Error(t, err)
}
