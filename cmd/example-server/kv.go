package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"service-pipeline/service"
)

const maxValueBytes = 1 << 20

// kvStore guarda valores por caminho: POST /{key} grava o corpo, GET /{key} devolve.
type kvStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newKVStore() *kvStore {
	return &kvStore{data: make(map[string][]byte)}
}

func (s *kvStore) Service() service.HTTP {
	return service.Func[*http.Request, *http.Response](s.serve)
}

func (s *kvStore) serve(ctx context.Context, r *http.Request) (*http.Response, error) {
	key := strings.Trim(r.URL.Path, "/")
	if key == "" {
		return service.NewResponse(r, http.StatusNotFound), nil
	}

	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		v, ok := s.data[key]
		s.mu.RUnlock()
		if !ok {
			return service.NewResponse(r, http.StatusNotFound), nil
		}
		res := service.NewResponse(r, http.StatusOK)
		res.Header.Set("Content-Type", "application/octet-stream")
		res.ContentLength = int64(len(v))
		res.Body = io.NopCloser(bytes.NewReader(v))
		return res, nil

	case http.MethodPost, http.MethodPut:
		v, err := io.ReadAll(io.LimitReader(r.Body, maxValueBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read value %q: %w", key, err)
		}
		if len(v) > maxValueBytes {
			return service.NewResponse(r, http.StatusRequestEntityTooLarge), nil
		}
		s.mu.Lock()
		s.data[key] = v
		s.mu.Unlock()
		return service.NewResponse(r, http.StatusOK), nil

	default:
		res := service.NewResponse(r, http.StatusMethodNotAllowed)
		res.Header.Set("Allow", "GET, POST, PUT")
		return res, nil
	}
}
