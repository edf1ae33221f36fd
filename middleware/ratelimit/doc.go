// Package ratelimit fornece layers de rate limit e limite de concorrência sobre
// service.HTTP.
//
// Visão geral (camadas):
//
//   - admission/domain: contratos e tipos (sem dependência de net/http)
//   - admission/application: casos de uso (decisão allow/deny, acquire/timeout)
//   - admission/infra: token bucket, semáforo e stores de estatísticas
//   - ratelimit (este pacote): layers + tradução da decisão para status/headers
//
// Fluxo:
//
//  1. Extrai a chave do cliente (IP/header/XFF)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 (rate limit) ou 503 (concorrência) sem chamar o serviço interno
//  4. Se permitido, encaminha ao serviço interno (ex: proxy)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_RPS, RATE_BURST, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package ratelimit
