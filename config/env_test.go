package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseDriver(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/elite?sslmode=disable": "postgres",
		"postgresql://localhost/elite":                        "postgres",
		"mysql://root@tcp(localhost:3306)/elite":              "mysql",
		"sqlserver://sa:pw@localhost:1433?database=elite":     "sqlserver",
		"file:elite.db?_pragma=foreign_keys(1)":               "sqlite",
		"elite.db":                                            "sqlite",
		"sqlite://elite.db":                                   "sqlite",
	}
	for dsn, want := range cases {
		t.Run(dsn, func(t *testing.T) {
			got, err := DatabaseDriver(dsn)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := DatabaseDriver("redis://localhost:6379")
	assert.Error(t, err)
}

func TestProcessEnvWins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("APP_ENV", "local")
	assert.False(t, IsProduction())
}

func TestDotEnvAndJSONMerge(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","seed_token":"from-json"}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("SEED_TOKEN=\"from-env\"\n# comment\n"), 0o600))

	require.NoError(t, loadFromFiles(jsonPath, envPath))
	t.Cleanup(func() { _ = loadFromFiles("", "") })

	assert.Equal(t, "9000", get("APP_PORT", ""))
	assert.Equal(t, "from-env", get("SEED_TOKEN", ""))
}

func TestDurationParsing(t *testing.T) {
	t.Setenv("DB_QUERY_TIMEOUT", "250ms")
	assert.Equal(t, 250*time.Millisecond, QueryTimeout())

	t.Setenv("DB_QUERY_TIMEOUT", "1500")
	assert.Equal(t, 1500*time.Millisecond, QueryTimeout())

	t.Setenv("DB_QUERY_TIMEOUT", "garbage")
	assert.Equal(t, defaultQueryTimeout, QueryTimeout())
}
