package service

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// NewResponse monta uma resposta sintetizada (sem corpo) para req.
func NewResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       http.NoBody,
		Request:    req,
	}
}

// Handler expõe um serviço HTTP como http.Handler.
//
// Quando s é um Cloner (ex: buffer.Buffer), cada requisição usa o seu próprio
// handle. Erros do serviço viram 502.
func Handler(s HTTP, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc := Clone(s)

		res, err := Oneshot(r.Context(), svc, r)
		if err != nil {
			logger.Error("service call failed",
				"event", "service_call_failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err.Error(),
			)
			status := http.StatusBadGateway
			if errors.Is(err, ErrServiceFailed) || errors.Is(err, ErrClosed) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
		if res.Body != nil {
			defer res.Body.Close()
		}

		for k, vs := range res.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(res.StatusCode)
		if res.Body != nil {
			if _, err := io.Copy(w, res.Body); err != nil {
				logger.Warn("copy response body",
					"event", "service_copy_body_failed",
					"path", r.URL.Path,
					"error", err.Error(),
				)
			}
		}
	})
}
