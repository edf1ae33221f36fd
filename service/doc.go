// Package service define o contrato central do pipeline: Service (readiness +
// call assíncrono), Layer (composição), Future (resultado diferido) e o Builder
// que empilha layers.
//
// Os middlewares em middleware/* e o buffer são todos Services; Handler expõe
// qualquer serviço HTTP para net/http.
package service
