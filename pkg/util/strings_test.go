package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAsInteger(t *testing.T) {
	n, err := GetAsInteger(" 1995 ")
	require.NoError(t, err)
	assert.Equal(t, 1995, n)

	n, err = GetAsInteger("1995.0")
	require.NoError(t, err)
	assert.Equal(t, 1995, n)

	_, err = GetAsInteger("1995.5")
	assert.Error(t, err)
	_, err = GetAsInteger(2.5)
	assert.Error(t, err)
	_, err = GetAsInteger(nil)
	assert.Error(t, err)
}

func TestGetAsFloat(t *testing.T) {
	f, err := GetAsFloat("2.10")
	require.NoError(t, err)
	assert.Equal(t, 2.1, f)
	_, err = GetAsFloat("evens")
	assert.Error(t, err)
}

func TestIsBlank(t *testing.T) {
	for _, v := range []string{"", "  ", "NaN", "null", "-"} {
		assert.True(t, IsBlank(v), v)
	}
	assert.False(t, IsBlank("1.5"))
}
