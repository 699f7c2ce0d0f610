package usecase

import (
	"strings"
	"testing"

	"warden/config"
	domainerrors "warden/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	cfg := &config.Config{}
	cfg.Policy = config.PolicyConfig{
		DisplayNameMinLength: 2,
		DisplayNameMaxLength: 100,
		PasswordMinLength:    6,
		PasswordMaxLength:    72,
	}

	return NewValidator(cfg)
}

func fieldRules(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)

	rules := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
	}

	return rules
}

func TestValidateRegister(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name  string
		input RegisterInput
		want  map[string]string
	}{
		{
			name:  "valid",
			input: RegisterInput{Email: "a@example.com", DisplayName: "Al", Password: "secret"},
		},
		{
			name:  "all missing",
			input: RegisterInput{},
			want:  map[string]string{"email": "required", "displayName": "required", "password": "required"},
		},
		{
			name:  "bad email",
			input: RegisterInput{Email: "not-an-email", DisplayName: "Alice", Password: "secret1"},
			want:  map[string]string{"email": "email"},
		},
		{
			name:  "short display name and password",
			input: RegisterInput{Email: "a@example.com", DisplayName: "A", Password: "12345"},
			want:  map[string]string{"displayName": "min", "password": "min"},
		},
		{
			name:  "display name counted in characters",
			input: RegisterInput{Email: "a@example.com", DisplayName: "李", Password: "secret1"},
			want:  map[string]string{"displayName": "min"},
		},
		{
			name:  "password too long",
			input: RegisterInput{Email: "a@example.com", DisplayName: "Alice", Password: strings.Repeat("x", 73)},
			want:  map[string]string{"password": "max"},
		},
		{
			name:  "password over bcrypt byte limit",
			input: RegisterInput{Email: "a@example.com", DisplayName: "Alice", Password: strings.Repeat("é", 40)},
			want:  map[string]string{"password": "maxbytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegister(&tt.input)
			if tt.want == nil {
				assert.NoError(t, err)

				return
			}
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
			assert.Equal(t, tt.want, fieldRules(t, err))
		})
	}
}

func TestValidateProfile(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateProfile(&UpdateProfileInput{DisplayName: "Bob"}))
	assert.Equal(t, map[string]string{"displayName": "required"}, fieldRules(t, v.ValidateProfile(&UpdateProfileInput{})))
	assert.Equal(t, map[string]string{"displayName": "max"},
		fieldRules(t, v.ValidateProfile(&UpdateProfileInput{DisplayName: strings.Repeat("b", 101)})))
}

func TestValidateItem(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateItem(&ItemInput{Title: "Notebook"}))
	assert.Equal(t, map[string]string{"title": "required"}, fieldRules(t, v.ValidateItem(&ItemInput{})))
	assert.Equal(t, map[string]string{"title": "max", "description": "max"}, fieldRules(t, v.ValidateItem(&ItemInput{
		Title:       strings.Repeat("t", ItemTitleMaxLength+1),
		Description: strings.Repeat("d", ItemDescriptionMaxLength+1),
	})))
}

func TestValidate_ChangeRoleAndList(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.Validate(&ChangeRoleInput{Role: "ADMIN"}))
	assert.Equal(t, map[string]string{"role": "oneof"}, fieldRules(t, v.Validate(&ChangeRoleInput{Role: "ROOT"})))

	assert.NoError(t, v.Validate(&ListInput{Offset: 10, Limit: 20}))
	assert.Equal(t, map[string]string{"limit": "max"}, fieldRules(t, v.Validate(&ListInput{Limit: 500})))
	assert.Equal(t, DefaultPageSize, ListInput{}.PageLimit())
}

func TestPolicyLabel(t *testing.T) {
	assert.Equal(t, "public", PublicPolicy().Label())
	assert.Equal(t, "authenticated", AuthenticatedPolicy().Label())
	assert.Equal(t, "role:ADMIN", RolePolicy("ADMIN").Label())
	assert.Equal(t, "owner", OwnerPolicy().Label())
}

func TestValidate_PolicyTagsFollowConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Policy = config.PolicyConfig{
		DisplayNameMinLength: 4,
		DisplayNameMaxLength: 8,
		PasswordMinLength:    10,
		PasswordMaxLength:    12,
	}
	v := NewValidator(cfg)

	assert.NoError(t, v.Validate(&RegisterInput{Email: "a@example.com", DisplayName: "Dave", Password: "0123456789"}))

	err := v.Validate(&RegisterInput{Email: "a@example.com", DisplayName: "Al", Password: "secret"})
	assert.Equal(t, map[string]string{"displayName": "min", "password": "min"}, fieldRules(t, err))

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, f := range verr.Fields {
		assert.Contains(t, f.Message, "at least")
	}

	err = v.Validate(&UpdateProfileInput{DisplayName: "Bartholomew"})
	assert.Equal(t, map[string]string{"displayName": "max"}, fieldRules(t, err))
}
