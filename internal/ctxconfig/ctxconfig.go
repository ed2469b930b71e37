package ctxconfig

import (
	"context"
	"net/http"

	"fknsrs.biz/p/rutube/internal/config"
)

var configKey int

func WithConfig(ctx context.Context, c config.Config) context.Context {
	return context.WithValue(ctx, &configKey, c)
}

func GetConfig(ctx context.Context) config.Config {
	if v := ctx.Value(&configKey); v != nil {
		return v.(config.Config)
	}

	return config.Default()
}

func Register(c config.Config) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithConfig(r.Context(), c)))
	}
}

func ResolveWorkers(ctx context.Context) int {
	if n := GetConfig(ctx).ResolveWorkers; n > 0 {
		return n
	}

	return 1
}
