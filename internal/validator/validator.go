package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/darkodi/url-alias/internal/errors"
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{3}-[A-Z]{2}$`)

// AliasValidator validates alias API inputs
type AliasValidator struct {
	validate         *validator.Validate
	maxPathLength    int
	reservedSegments []string
}

// NewAliasValidator creates a validator with default settings
func NewAliasValidator() *AliasValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return IsLanguageCode(fl.Field().String())
	})

	return &AliasValidator{
		validate:         v,
		maxPathLength:    1024,
		reservedSegments: []string{},
	}
}

// IsLanguageCode reports whether code looks like eng-GB
func IsLanguageCode(code string) bool {
	return languageCodePattern.MatchString(code)
}

// ValidateRequest checks the validate tags of a decoded request body
func (v *AliasValidator) ValidateRequest(req any) *errors.AppError {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ValidationFailed(err.Error())
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describe(fe))
	}
	return errors.ValidationFailed(strings.Join(details, "; "))
}

// ValidatePath validates an alias path such as /Home/Contact-Us
func (v *AliasValidator) ValidatePath(path string) *errors.AppError {
	if strings.TrimSpace(path) == "" {
		return errors.MissingField("path")
	}

	if len(path) > v.maxPathLength {
		return errors.InvalidPath(fmt.Sprintf("path exceeds maximum length of %d characters", v.maxPathLength))
	}

	if !strings.HasPrefix(path, "/") {
		return errors.InvalidPath("path must start with /")
	}

	segments := strings.Split(path[1:], "/")
	for _, segment := range segments {
		switch segment {
		case "":
			return errors.InvalidPath("path must not contain empty segments")
		case ".", "..":
			return errors.InvalidPath("path must not contain relative segments")
		}
		if strings.IndexFunc(segment, unicode.IsControl) >= 0 {
			return errors.InvalidPath("path must not contain control characters")
		}
	}

	if v.isReserved(segments[0]) {
		return errors.InvalidPath("This path is reserved and cannot be used")
	}

	return nil
}

// ValidateLanguageCode validates an optional language code parameter
func (v *AliasValidator) ValidateLanguageCode(code string) *errors.AppError {
	if code == "" {
		return nil
	}
	if !IsLanguageCode(code) {
		return errors.BadRequest(fmt.Sprintf("Language code '%s' must look like eng-GB", code))
	}
	return nil
}

// ============================================================
// HELPER METHODS
// ============================================================

func (v *AliasValidator) isReserved(segment string) bool {
	for _, r := range v.reservedSegments {
		if strings.EqualFold(segment, r) {
			return true
		}
	}
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", fe.Namespace(), fe.Param())
	case "langcode":
		return fmt.Sprintf("%s must be a language code like eng-GB", fe.Namespace())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

// ============================================================
// CONFIGURATION METHODS
// ============================================================

// WithMaxPathLength sets maximum path length
func (v *AliasValidator) WithMaxPathLength(length int) *AliasValidator {
	v.maxPathLength = length
	return v
}

// WithReservedSegments rejects paths whose first segment is one of segments
func (v *AliasValidator) WithReservedSegments(segments ...string) *AliasValidator {
	v.reservedSegments = append(v.reservedSegments, segments...)
	return v
}
