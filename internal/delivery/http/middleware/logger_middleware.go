package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"smartcare/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

type LoggerMiddleware struct {
	log *logrus.Logger
}

func NewLoggerMiddleware(log *logrus.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{log: log}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Handle tags the request with an ID, logs one line when it completes and
// turns a panic into a 500.
func (m *LoggerMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		requestID := req.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     req.Method,
			"path":       req.URL.Path,
		})

		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				entry.WithFields(logrus.Fields{
					"panic": fmt.Sprintf("%v", r),
					"stack": string(stack[:n]),
				}).Error("panic recovered")
				response.InternalServerError(rec, "")
			}
			entry.WithFields(logrus.Fields{
				"status":  rec.status,
				"latency": time.Since(start).String(),
			}).Info("request")
		}()

		next.ServeHTTP(rec, req)
	})
}
