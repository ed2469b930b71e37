package configreader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/rutube/internal/config"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(tomlPath, []byte("user_agent = \"from-toml\"\nresolve_workers = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("user_agent: from-yaml\napi_base_url: http://localhost:1234\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name        string
		arguments   []string
		environment []string
		check       func(a *assert.Assertions, c config.Config)
	}{
		{
			name: "defaults",
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal(config.Default(), c)
			},
		},
		{
			name:      "flags",
			arguments: []string{"-log_level", "debug", "-resolve_workers=8", "-application_cache_max_age", "90m", "-application_cache_path", "/tmp/cache.db"},
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal(logrus.DebugLevel, c.LogLevel)
				a.Equal(8, c.ResolveWorkers)
				a.Equal(90*time.Minute, c.ApplicationCacheMaxAge)
				a.Equal("/tmp/cache.db", c.ApplicationCachePath)
			},
		},
		{
			name:        "environment",
			environment: []string{"RESOLVE_WORKERS=3", "APPLICATION_CACHE_MAX_AGE=1h", "LOG_DEBUG_LEVELS=warning,error", "API_BASE_URL=http://example.com"},
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal(3, c.ResolveWorkers)
				a.Equal(time.Hour, c.ApplicationCacheMaxAge)
				a.Equal(config.LevelList{logrus.WarnLevel, logrus.ErrorLevel}, c.LogDebugLevels)
				a.Equal("http://example.com", c.APIBaseURL)
			},
		},
		{
			name:        "environment overrides flags",
			arguments:   []string{"-user_agent", "from-flag"},
			environment: []string{"USER_AGENT=from-env"},
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal("from-env", c.UserAgent)
			},
		},
		{
			name:      "toml file",
			arguments: []string{"-config", tomlPath},
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal("from-toml", c.UserAgent)
				a.Equal(2, c.ResolveWorkers)
			},
		},
		{
			name:        "yaml file from environment",
			environment: []string{"CONFIG=" + yamlPath},
			check: func(a *assert.Assertions, c config.Config) {
				a.Equal("from-yaml", c.UserAgent)
				a.Equal("http://localhost:1234", c.APIBaseURL)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			c := config.Default()
			if a.NoError(Read("rutube", tc.arguments, tc.environment, &c)) {
				tc.check(a, c)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	a := assert.New(t)

	var c config.Config

	a.Error(Read("rutube", nil, []string{"RESOLVE_WORKERS=many"}, &c))
	a.Error(Read("rutube", nil, []string{"APPLICATION_CACHE_MAX_AGE=soon"}, &c))
	a.Error(Read("rutube", []string{"-config", "config.ini"}, nil, &c))
	a.Error(Read("rutube", nil, nil, c))
}
