package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ana@example.com"))
	assert.True(t, ValidateEmail("ana.silva+tag@sub.example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Sup3r$ecret"))
	assert.False(t, ValidatePassword("Ab1$xyz"))
	assert.False(t, ValidatePassword("alllowercase1$"))
	assert.False(t, ValidatePassword("ALLUPPERCASE1$"))
	assert.False(t, ValidatePassword("NoDigits$here"))
	assert.False(t, ValidatePassword("NoSpecial123"))
}
