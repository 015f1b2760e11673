package testutil

import (
	"testing"

	"github.com/spf13/viper"
)

// ResetConfig resets the global viper instance now and again when the test
// completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// SetViperValue sets a global viper value and restores the previous value on cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so a previously unset key keeps the test value.
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupTestDB points database.path at a fresh file in env and returns it.
func SetupTestDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.DBPath("")
	SetViperValue(t, "database.path", dbPath)
	return dbPath
}
