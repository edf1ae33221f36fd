package authorization

import (
	"net/http"

	"service-pipeline/service"
)

// BearerScheme autoriza quando Authorization é exatamente "Bearer {token}".
type BearerScheme struct {
	NopOnAuthorized[struct{}]
	headerValue string
}

var _ Authorizer[struct{}] = BearerScheme{}

// NewBearer entra em pânico se o token não formar um valor de header válido.
func NewBearer(token string) BearerScheme {
	return BearerScheme{headerValue: mustHeaderValue("Bearer "+token, "token")}
}

func (b BearerScheme) Authorize(r *http.Request) (struct{}, bool) {
	return struct{}{}, r.Header.Get("Authorization") == b.headerValue
}

func (b BearerScheme) UnauthorizedResponse(r *http.Request) *http.Response {
	return service.NewResponse(r, http.StatusUnauthorized)
}

func (b BearerScheme) String() string { return "Bearer" }
