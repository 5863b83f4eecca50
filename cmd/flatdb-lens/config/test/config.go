package configtest

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config"
	"github.com/stretchr/testify/require"
)

func fromFile(path string) *config.Config {
	c, err := config.New(config.WithConfigFile(path))
	if err != nil {
		panic(err)
	}

	return c
}

func forEachFile(paths []string, f func(*config.Config)) {
	for i := range paths {
		f(fromFile(paths[i]))
	}
}

// ForEachFileType passes configs read from next files:
//   - `<pref>.yaml`;
//   - `<pref>.json`.
func ForEachFileType(pref string, f func(*config.Config)) {
	forEachFile([]string{
		pref + ".yaml",
		pref + ".json",
	}, f)
}

// ForEnvFileType sets ENV variables listed in `<pref>.env` for the test
// and passes a config without file to f.
func ForEnvFileType(t testing.TB, pref string, f func(*config.Config)) {
	loadEnv(t, pref+".env")
	f(EmptyConfig())
}

// EmptyConfig returns config without any values and sections.
func EmptyConfig() *config.Config {
	c, err := config.New()
	if err != nil {
		panic(err)
	}

	return c
}

func loadEnv(t testing.TB, path string) {
	f, err := os.Open(path)
	require.NoError(t, err, "can't open .env file")

	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, "invalid .env line %q", line)

		t.Setenv(k, strings.Trim(v, `"`))
	}

	require.NoError(t, scanner.Err())
}
