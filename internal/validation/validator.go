// Package validation holds the pre-dispatch field rules of the gateway and
// turns binding failures into the human-readable messages returned in a
// 400 response.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MsgStrongPassword  = "Password must contain at least one uppercase letter, one lowercase letter, one number and one special character"
	MsgMalformedJSON   = "Request body must be valid JSON"
	PasswordSpecials   = "@$!%*?&"
	defaultInvalidText = "is invalid"
)

var (
	lettersRe       = regexp.MustCompile(`^[a-zA-Z]+$`)
	passwordCharsRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
)

// messages maps "<json field>.<tag>" to the text shown to the caller.
var messages = map[string]string{
	"email.required":        "Email is required",
	"email.email":           "Please provide a valid email address",
	"firstName.required":    "First name is required",
	"firstName.min":         "First name must be at least 2 characters long",
	"firstName.letters":     "First name can only contain letters",
	"lastName.required":     "Last name is required",
	"lastName.min":          "Last name must be at least 2 characters long",
	"lastName.letters":      "Last name can only contain letters",
	"password.required":     "Password is required",
	"password.min":          "Password must be at least 8 characters long",
	"password.strongpwd":    MsgStrongPassword,
	"newPassword.strongpwd": MsgStrongPassword,
}

// Init registers the custom rules on gin's default validator and makes JSON
// binding reject unknown fields.
func Init() error {
	binding.EnableDecoderDisallowUnknownFields = true

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: unexpected binding engine")
	}
	return Register(v)
}

// Register adds the json tag name function and the "letters" and
// "strongpwd" rules to v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("letters", func(fl validator.FieldLevel) bool {
		return lettersRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

// StrongPassword reports whether p uses only letters, digits and
// PasswordSpecials and has at least one of each: lowercase, uppercase,
// digit and special.
func StrongPassword(p string) bool {
	if !passwordCharsRe.MatchString(p) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// Messages converts a binding error into caller-facing messages, one per
// failing field, in field order.
func Messages(err error) []string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, message(fe))
		}
		return out
	}

	if field, ok := unknownField(err); ok {
		return []string{fmt.Sprintf("property %s should not exist", field)}
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "body"
		}
		return []string{fmt.Sprintf("%s must be a %s", field, ute.Type.String())}
	}

	return []string{MsgMalformedJSON}
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " should not be empty"
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be an email"
	case "strongpwd":
		return MsgStrongPassword
	default:
		return fe.Field() + " " + defaultInvalidText
	}
}

// unknownField extracts the name from encoding/json's
// `json: unknown field "x"` error.
func unknownField(err error) (string, bool) {
	const prefix = `json: unknown field "`
	s := err.Error()
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, prefix), `"`), true
}
