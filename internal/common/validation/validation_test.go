package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("underwriting@example.com"))
	assert.True(t, ValidateEmail("risk-alerts+loans@sub.example.co.in"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+911234567890"))
	assert.True(t, ValidatePhone("(022) 1234-5678"))
	assert.False(t, ValidatePhone("123"))
	assert.False(t, ValidatePhone(""))
}
