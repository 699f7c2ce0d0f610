package usecase

import (
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"warden/config"
	domainerrors "warden/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// bcryptMaxBytes is the longest password bcrypt accepts.
const bcryptMaxBytes = 72

// Tags for the length rules that come from the policy config.
const (
	tagDisplayName = "displayname"
	tagPassword    = "password"
)

// Validator checks each input shape and reports every rejected field at once.
// All rules run through validator/v10; the policy-bound ones are registered tags.
type Validator struct {
	validate *validator.Validate
	policy   config.PolicyConfig
}

// NewValidator builds a Validator for the configured policy.
func NewValidator(cfg *config.Config) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	policy := cfg.Policy
	mustRegister(v, tagDisplayName, func(fl validator.FieldLevel) bool {
		return lengthRule(fl.Field().String(), policy.DisplayNameMinLength, policy.DisplayNameMaxLength) == ""
	})
	mustRegister(v, tagPassword, func(fl validator.FieldLevel) bool {
		return passwordRule(fl.Field().String(), policy) == ""
	})

	return &Validator{validate: v, policy: policy}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(errors.Wrapf(err, "register %s validation", tag))
	}
}

// Validate runs the tag rules of any struct. It satisfies echo.Validator.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate input")
	}

	fields := make([]domainerrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, v.fieldError(fe))
	}

	return domainerrors.NewValidationError(fields)
}

// ValidateRegister checks a registration request.
func (v *Validator) ValidateRegister(in *RegisterInput) error {
	return v.Validate(in)
}

// ValidateProfile checks a profile update.
func (v *Validator) ValidateProfile(in *UpdateProfileInput) error {
	return v.Validate(in)
}

// ValidateItem checks an item create or update.
func (v *Validator) ValidateItem(in *ItemInput) error {
	return v.Validate(in)
}

// fieldError turns a failed tag into a FieldError. Policy tags report the
// concrete bound that was crossed.
func (v *Validator) fieldError(fe validator.FieldError) domainerrors.FieldError {
	out := domainerrors.FieldError{Field: fe.Field(), Rule: fe.Tag()}
	value, _ := fe.Value().(string)

	switch fe.Tag() {
	case tagDisplayName:
		out.Rule = lengthRule(value, v.policy.DisplayNameMinLength, v.policy.DisplayNameMaxLength)
		out.Message = lengthMessage(out.Rule, v.policy.DisplayNameMinLength, v.policy.DisplayNameMaxLength)
	case tagPassword:
		out.Rule = passwordRule(value, v.policy)
		out.Message = lengthMessage(out.Rule, v.policy.PasswordMinLength, v.policy.PasswordMaxLength)
	case "required":
		out.Message = "is required"
	case "email":
		out.Message = "must be a valid email address"
	case "oneof":
		out.Message = "must be one of: " + fe.Param()
	case "min":
		out.Message = "must be at least " + fe.Param()
	case "max":
		out.Message = "must be at most " + fe.Param()
	default:
		out.Message = "failed " + fe.Tag() + " check"
	}

	return out
}

// lengthRule names the violated bound, counting characters, or "" when s fits.
func lengthRule(s string, minLen, maxLen int) string {
	n := utf8.RuneCountInString(s)
	switch {
	case n < minLen:
		return "min"
	case n > maxLen:
		return "max"
	default:
		return ""
	}
}

// passwordRule adds the bcrypt byte limit to the configured length bounds.
func passwordRule(password string, policy config.PolicyConfig) string {
	if rule := lengthRule(password, policy.PasswordMinLength, policy.PasswordMaxLength); rule != "" {
		return rule
	}
	if len(password) > bcryptMaxBytes {
		return "maxbytes"
	}

	return ""
}

func lengthMessage(rule string, minLen, maxLen int) string {
	switch rule {
	case "min":
		return "must be at least " + strconv.Itoa(minLen) + " characters"
	case "max":
		return "must be at most " + strconv.Itoa(maxLen) + " characters"
	default:
		return "must be at most " + strconv.Itoa(bcryptMaxBytes) + " bytes"
	}
}
