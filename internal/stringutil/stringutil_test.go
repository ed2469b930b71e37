package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var caseConversionTests = []struct {
	pascalCase string
	snakeCase  string
}{
	{"ID", "id"},
	{"Config", "config"},
	{"LogLevel", "log_level"},
	{"LogDebugLevels", "log_debug_levels"},
	{"ApplicationCacheMaxAge", "application_cache_max_age"},
	{"APIBaseURL", "api_base_url"},
	{"UserAgent", "user_agent"},
	{"ResolveWorkers", "resolve_workers"},
	{"VideoID", "video_id"},
	{"MP4Std", "mp4_std"},
}

func TestPascalToSnake(t *testing.T) {
	for _, tc := range caseConversionTests {
		t.Run(tc.pascalCase, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.snakeCase, PascalToSnake(tc.pascalCase))
		})
	}
}

func BenchmarkPascalToSnake(b *testing.B) {
	for _, tc := range caseConversionTests {
		b.Run(tc.pascalCase, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				PascalToSnake(tc.pascalCase)
			}
		})
	}
}

func TestLooksTrue(t *testing.T) {
	a := assert.New(t)

	for _, s := range []string{"1", "true", "TRUE", " yes ", "on"} {
		a.True(LooksTrue(s), s)
	}

	for _, s := range []string{"", "0", "false", "off", "nope"} {
		a.False(LooksTrue(s), s)
	}
}
