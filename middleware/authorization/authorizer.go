package authorization

import (
	"context"
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// Authorizer decide a admissão de uma requisição.
//
//   - Authorize olha apenas headers (nunca o corpo). ok=true autoriza e carrega Out.
//   - OnAuthorized é chamado com Out antes do encaminhamento e pode devolver uma
//     requisição anotada (ex: WithOutput). Embuta NopOnAuthorized para o padrão no-op.
//   - UnauthorizedResponse monta a recusa.
type Authorizer[Out any] interface {
	Authorize(r *http.Request) (out Out, ok bool)
	OnAuthorized(r *http.Request, out Out) *http.Request
	UnauthorizedResponse(r *http.Request) *http.Response
}

// NopOnAuthorized é o hook padrão: encaminha a requisição sem alterações.
type NopOnAuthorized[Out any] struct{}

func (NopOnAuthorized[Out]) OnAuthorized(r *http.Request, _ Out) *http.Request { return r }

type outputKey[Out any] struct{}

// WithOutput anexa out ao contexto da requisição, para uso por serviços abaixo.
func WithOutput[Out any](r *http.Request, out Out) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), outputKey[Out]{}, out))
}

// OutputFrom recupera o Out anexado por WithOutput.
func OutputFrom[Out any](ctx context.Context) (Out, bool) {
	out, ok := ctx.Value(outputKey[Out]{}).(Out)
	return out, ok
}

// mustHeaderValue é erro de configuração: falha na construção, nunca por requisição.
func mustHeaderValue(v, what string) string {
	if !httpguts.ValidHeaderFieldValue(v) {
		panic("authorization: " + what + " is not a valid header value")
	}
	return v
}
