package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/zalando/go-keyring"
)

func TestPasswords(t *testing.T) {
	keyring.MockInit()

	pass, err := calendar.LoadPassword("me@example.com")
	require.NoError(t, err, "a missing entry is not an error")
	assert.Empty(t, pass)

	require.NoError(t, calendar.SavePassword("me@example.com", "app-password"))
	pass, err = calendar.LoadPassword("me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "app-password", pass)

	pass, err = calendar.LoadPassword("")
	require.NoError(t, err)
	assert.Empty(t, pass)
}
