package calendar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/zalando/go-keyring"
)

// SavePassword stores the address book password in the OS keyring under user.
func SavePassword(user, pass string) error {
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return nil
}

// LoadPassword reads the password saved for user. A missing entry yields an empty
// password so anonymous servers keep working.
func LoadPassword(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompFetcher,
			config.LogKeyUser, user,
		)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return pass, nil
}
