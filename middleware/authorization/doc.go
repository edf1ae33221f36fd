// Package authorization autoriza requisições pelo header Authorization.
//
// RequireAuthorization é um service.HTTP que avalia cada requisição antes de
// encaminhá-la: se autorizada, segue para o serviço interno; se não, devolve uma
// resposta de recusa sintetizada (401) sem chamar o serviço interno.
//
//	svc := service.NewBuilder[*http.Request, *http.Response]().
//		Layer(authorization.BearerLayer("passwordlol")).
//		Service(inner)
//
//	// Authorization: Bearer passwordlol -> inner é chamado
//	// sem header                        -> 401, inner não é chamado
//
// Recusas são respostas de sucesso com status de erro, nunca erros do Future.
// Esquemas próprios implementam Authorizer e entram por New/NewLayer.
//
// AddBearerLayer/AddBasicLayer fazem o caminho inverso no cliente: colocam o
// header em toda requisição de saída.
package authorization
