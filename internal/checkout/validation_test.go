package checkout

import (
	"testing"

	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() domain.Form {
	return domain.Form{
		CustomerName: "Mona Ali",
		Phone:        "01012345678",
		Address:      "12 Nile Street, Cairo",
		LocationURL:  "https://www.google.com/maps?q=30.0444,31.2357",
	}
}

func TestValidateForm_Valid(t *testing.T) {
	assert.NoError(t, ValidateForm(validForm()))
}

func TestValidateForm_Phone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"01012345678", true},
		{"01112345678", true},
		{"01212345678", true},
		{"01512345678", true},
		{"02012345678", false},
		{"01312345678", false},
		{"0101234567", false},
		{"010123456789", false},
		{"+201012345678", false},
		{"0101234567a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f := validForm()
			f.Phone = tt.phone
			err := ValidateForm(f)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, map[string]string{FieldPhone: msgInvalidPhone}, verr.Fields)
		})
	}
}

func TestValidateForm_NameLength(t *testing.T) {
	f := validForm()
	f.CustomerName = "ab"
	var verr *ValidationError
	require.ErrorAs(t, ValidateForm(f), &verr)
	assert.Equal(t, msgNameTooShort, verr.Fields[FieldName])

	f.CustomerName = "علي"
	assert.NoError(t, ValidateForm(f))
}

func TestMinLength_CountsUTF16Units(t *testing.T) {
	atLeast3 := MinLength(3, "short")

	tests := []struct {
		value string
		want  string
	}{
		{"ab", "short"},
		{"abc", ""},
		{"😀", "short"},
		{"😀😀", ""},
		{"a😀", ""},
		{"عل", "short"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, atLeast3(tt.value), tt.value)
	}
}

func TestValidateForm_AddressLength(t *testing.T) {
	f := validForm()
	f.Address = "123456789"
	var verr *ValidationError
	require.ErrorAs(t, ValidateForm(f), &verr)
	assert.Equal(t, msgAddressTooShort, verr.Fields[FieldAddress])

	f.Address = "1234567890"
	assert.NoError(t, ValidateForm(f))
}

func TestValidateForm_LocationRequired(t *testing.T) {
	for _, location := range []string{"", "not a url", "www.google.com/maps", "/maps?q=1,2"} {
		f := validForm()
		f.LocationURL = location
		var verr *ValidationError
		require.ErrorAs(t, ValidateForm(f), &verr, location)
		assert.Equal(t, map[string]string{FieldLocationURL: msgLocationMissing}, verr.Fields)
	}
}

func TestValidateForm_NotesUnconstrained(t *testing.T) {
	f := validForm()
	f.Notes = "x"
	assert.NoError(t, ValidateForm(f))
}

func TestValidateForm_ReportsEveryField(t *testing.T) {
	err := ValidateForm(domain.Form{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Equal(t, "invalid checkout form: address, location_url, name, phone", err.Error())
}
