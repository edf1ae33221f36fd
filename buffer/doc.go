// Package buffer serializa chamadas concorrentes sobre uma única instância de
// serviço através de uma fila FIFO limitada.
//
// Um Buffer é um handle: cada chamador concorrente deve usar o seu próprio
// (Clone), porque o handle guarda a vaga reservada por Ready até o Call seguinte.
// Todos os clones compartilham a mesma fila e o mesmo worker.
//
//	buf := buffer.New(svc, 1024)
//	defer buf.Close()
//
//	h := buf.Clone()
//	if err := h.Ready(ctx); err != nil { ... }
//	res, err := h.Call(ctx, req).Await(ctx)
//
// Só o worker chama Ready/Call do serviço embrulhado. Se o Ready do serviço
// falhar, o buffer fica permanentemente inutilizável: toda chamada pendente ou
// futura recebe service.ErrServiceFailed.
package buffer
