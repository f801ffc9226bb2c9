package repo_test

import (
	"testing"

	"euchre-service/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"":           "postgres",
		"postgres":   "postgres",
		"PostgreSQL": "postgres",
		"mysql":      "mysql",
		"sqlite":     "sqlite",
		" sqlite3 ":  "sqlite",
	}
	for driver, want := range cases {
		d, err := repo.Dialector(driver, "dsn")
		require.NoError(t, err, driver)
		assert.Equal(t, want, d.Name(), driver)
	}

	_, err := repo.Dialector("oracle", "dsn")
	assert.Error(t, err)
}
