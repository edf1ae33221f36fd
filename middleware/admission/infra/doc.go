// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo baseado em channel (concorrência e fila do buffer)
//   - *StatsStore: persistência/publicação de eventos de decisão em memória,
//     Redis, Postgres (GORM), NATS, Kafka (franz-go) e RabbitMQ
package infra
