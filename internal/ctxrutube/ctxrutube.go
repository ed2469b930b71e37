package ctxrutube

import (
	"context"
	"net/http"

	"fknsrs.biz/p/rutube/internal/rutube"
)

var clientKey int

func WithClient(ctx context.Context, c *rutube.Client) context.Context {
	return context.WithValue(ctx, &clientKey, c)
}

// GetClient returns the client stored on ctx, or one talking to the public
// site.
func GetClient(ctx context.Context) *rutube.Client {
	if v, ok := ctx.Value(&clientKey).(*rutube.Client); ok && v != nil {
		return v
	}

	return rutube.New("")
}

func Register(c *rutube.Client) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithClient(r.Context(), c)))
	}
}
