package trace

import "net/http"

// Classifier decide se o resultado de uma chamada é falha.
type Classifier func(res *http.Response, err error) bool

// StatusInRangeAsFailures trata como falha todo erro de serviço e toda resposta
// com status em [lo, hi].
func StatusInRangeAsFailures(lo, hi int) Classifier {
	if lo > hi {
		panic("trace: invalid status range")
	}
	return func(res *http.Response, err error) bool {
		if err != nil || res == nil {
			return true
		}
		return res.StatusCode >= lo && res.StatusCode <= hi
	}
}

// ServerErrorsAsFailures considera só 5xx (e erros) como falha.
func ServerErrorsAsFailures() Classifier {
	return StatusInRangeAsFailures(500, 599)
}
