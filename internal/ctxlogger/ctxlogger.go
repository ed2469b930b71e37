package ctxlogger

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// context registration

var loggerKey int

func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, &loggerKey, l)
}

func GetLogger(ctx context.Context) logrus.FieldLogger {
	if v := ctx.Value(&loggerKey); v != nil {
		return v.(logrus.FieldLogger)
	}

	return logrus.StandardLogger()
}

func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, GetLogger(ctx).WithFields(fields))
}

// middleware

func Register(l logrus.FieldLogger) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithLogger(r.Context(), l)))
	}
}

func Log() func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		l := GetLogger(r.Context()).WithFields(logrus.Fields{
			"http.method":     r.Method,
			"http.path":       r.URL.String(),
			"http.host":       r.Host,
			"http.user_agent": r.Header.Get("user-agent"),
		})

		start := time.Now()

		defer func() {
			l = l.WithField("http.duration", time.Since(start))

			if nrw, ok := rw.(interface {
				Status() int
				Size() int
			}); ok {
				l = l.WithFields(logrus.Fields{
					"http.status_code":   nrw.Status(),
					"http.response_size": nrw.Size(),
				})
			}

			l.Info("http request finished")
		}()

		l.Info("http request started")

		next(rw, r.WithContext(WithLogger(r.Context(), l)))
	}
}
