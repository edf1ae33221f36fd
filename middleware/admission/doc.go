// Package admission reúne o que as camadas de admissão HTTP compartilham.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (token bucket, semáforo, stats stores)
//   - admission (este pacote): extração de chave do cliente e registro best-effort
//     das decisões
//
// As camadas em middleware/authorization e middleware/ratelimit usam este pacote
// para registrar cada decisão num domain.StatsStore.
package admission
