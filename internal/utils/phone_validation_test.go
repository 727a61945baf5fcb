package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInternationalNumeric(t *testing.T) {
	valid := []string{
		"441234567890",
		"15551234567",
		"4915112345678",
		"1234567", // 7 digits, minimum length
	}
	for _, number := range valid {
		assert.True(t, IsInternationalNumeric(number), "expected %q to be accepted", number)
	}

	invalid := []string{
		"",
		"+441234567890", // no "+" prefix in storage form
		"0441234567890", // no leading zero
		"44 1234 567890",
		"44-1234-567890",
		"(44)1234567890",
		"123456",           // too short
		"1234567890123456", // 16 digits, too long
		"44123456789a",
	}
	for _, number := range invalid {
		assert.False(t, IsInternationalNumeric(number), "expected %q to be rejected", number)
	}
}

func TestValidatePhoneNumberLocalOnly(t *testing.T) {
	ok, err := ValidatePhoneNumber(context.Background(), "441234567890", false, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidatePhoneNumber(context.Background(), "+441234567890", false, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatePhoneNumberSkipsLookupWithoutClient(t *testing.T) {
	// validateWithTwilio set but no client configured: fall back to the
	// syntax check rather than panicking or failing closed.
	ok, err := ValidatePhoneNumber(context.Background(), "441234567890", true, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
