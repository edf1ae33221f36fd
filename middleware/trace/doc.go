// Package trace registra cada chamada de um service.HTTP com log/slog e
// classifica o resultado como sucesso ou falha.
//
// Por padrão, erros de serviço e respostas 4xx/5xx contam como falha
// (StatusInRangeAsFailures(400, 599)).
//
// RequestIDLayer garante um X-Request-Id em toda requisição e o devolve na resposta.
package trace
