package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type LevelList []logrus.Level

func (a LevelList) MarshalText() ([]byte, error) {
	if len(a) == 0 {
		return []byte("-"), nil
	}

	s := make([]string, len(a))
	for i, e := range a {
		s[i] = e.String()
	}

	return []byte(strings.Join(s, ",")), nil
}

func (a *LevelList) UnmarshalText(d []byte) error {
	if string(d) == "" || string(d) == "-" {
		*a = LevelList{}
		return nil
	}

	var aa LevelList

	for _, e := range strings.Split(string(d), ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		l, err := logrus.ParseLevel(e)
		if err != nil {
			return fmt.Errorf("config.LevelList.UnmarshalText: could not parse value as logrus level: %w", err)
		}

		aa = append(aa, l)
	}

	*a = aa

	return nil
}

type Config struct {
	Config                 string        `name:"config" toml:"config" yaml:"config" help:"Config file location."`
	LogLevel               logrus.Level  `name:"log_level" toml:"log_level" yaml:"log_level" help:"Global log level."`
	LogDebugLevels         LevelList     `name:"log_debug_levels" toml:"log_debug_levels" yaml:"log_debug_levels" help:"Which log levels to include stack data on."`
	ApplicationAddr        string        `name:"application_addr" toml:"application_addr" yaml:"application_addr" help:"Address to listen on for application server."`
	ApplicationCachePath   string        `name:"application_cache_path" toml:"application_cache_path" yaml:"application_cache_path" help:"Location for HTTP client cache. Leave empty to disable caching."`
	ApplicationCacheMaxAge time.Duration `name:"application_cache_max_age" toml:"application_cache_max_age" yaml:"application_cache_max_age" help:"How long cached API responses are reused."`
	APIBaseURL             string        `name:"api_base_url" toml:"api_base_url" yaml:"api_base_url" help:"Base URL of the Rutube site and API."`
	UserAgent              string        `name:"user_agent" toml:"user_agent" yaml:"user_agent" help:"User-Agent sent with outgoing requests."`
	ResolveWorkers         int           `name:"resolve_workers" toml:"resolve_workers" yaml:"resolve_workers" help:"How many videos to resolve at once when expanding a collection."`
}

func Default() Config {
	return Config{
		LogLevel:               logrus.InfoLevel,
		LogDebugLevels:         LevelList{logrus.DebugLevel, logrus.TraceLevel},
		ApplicationAddr:        ":8080",
		ApplicationCacheMaxAge: 24 * time.Hour,
		APIBaseURL:             "https://rutube.ru",
		UserAgent:              "rutube-extractor/1.0",
		ResolveWorkers:         4,
	}
}
