package checkout

import (
	"net/url"
	"regexp"
	"unicode/utf16"

	"github.com/makahco2025-svg/test3/internal/domain"
)

// Form field names, as the client addresses them.
const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldAddress     = "address"
	FieldLocationURL = "location_url"
)

const (
	msgNameTooShort    = "الاسم يجب أن يكون 3 أحرف على الأقل."
	msgInvalidPhone    = "الرجاء إدخال رقم هاتف مصري صحيح."
	msgAddressTooShort = "الرجاء إدخال عنوان تفصيلي."
	msgLocationMissing = "الرجاء تحديد موقعك أولاً."
)

// Mobile prefixes 010, 011, 012 and 015 followed by 8 digits.
var phonePattern = regexp.MustCompile(`^01[0125][0-9]{8}$`)

// Validator returns the reason value is invalid, or "" when it is valid.
type Validator func(value string) string

type rule struct {
	field    string
	value    func(domain.Form) string
	validate Validator
}

var formRules = []rule{
	{FieldName, func(f domain.Form) string { return f.CustomerName }, MinLength(3, msgNameTooShort)},
	{FieldPhone, func(f domain.Form) string { return f.Phone }, Matches(phonePattern, msgInvalidPhone)},
	{FieldAddress, func(f domain.Form) string { return f.Address }, MinLength(10, msgAddressTooShort)},
	{FieldLocationURL, func(f domain.Form) string { return f.LocationURL }, ValidURL(msgLocationMissing)},
}

// MinLength measures value in UTF-16 code units, the way browser forms
// count characters; a character outside the BMP counts twice.
func MinLength(n int, reason string) Validator {
	return func(value string) string {
		if utf16Len(value) < n {
			return reason
		}
		return ""
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func Matches(re *regexp.Regexp, reason string) Validator {
	return func(value string) string {
		if !re.MatchString(value) {
			return reason
		}
		return ""
	}
}

// ValidURL accepts absolute URLs with a scheme and a host.
func ValidURL(reason string) Validator {
	return func(value string) string {
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return reason
		}
		return ""
	}
}

// ValidateForm runs every field rule and returns a *ValidationError listing
// all failures, or nil when the form passes. Notes are never validated.
func ValidateForm(f domain.Form) error {
	fields := make(map[string]string)
	for _, r := range formRules {
		if reason := r.validate(r.value(f)); reason != "" {
			fields[r.field] = reason
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
