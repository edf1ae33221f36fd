// Package application contém os casos de uso das decisões de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: RateService.Decide(key) retorna uma Decision (allow/deny + retry-after) e
// SlotService.Acquire reserva uma vaga com timeout.
package application
