package authorization

import (
	"encoding/base64"
	"net/http"

	"service-pipeline/service"
)

// BasicScheme autoriza quando Authorization é exatamente
// "Basic " + base64("{username}:{password}").
//
// Usuário e senha trafegam em texto claro; use HTTPS/TLS. O middleware não impõe isso.
type BasicScheme struct {
	NopOnAuthorized[struct{}]
	headerValue string
}

var _ Authorizer[struct{}] = BasicScheme{}

func NewBasic(username, password string) BasicScheme {
	return BasicScheme{headerValue: mustHeaderValue(basicValue(username, password), "credentials")}
}

func basicValue(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func (b BasicScheme) Authorize(r *http.Request) (struct{}, bool) {
	return struct{}{}, r.Header.Get("Authorization") == b.headerValue
}

func (b BasicScheme) UnauthorizedResponse(r *http.Request) *http.Response {
	res := service.NewResponse(r, http.StatusUnauthorized)
	res.Header.Set("WWW-Authenticate", "Basic")
	return res
}

func (b BasicScheme) String() string { return "Basic" }
