// Package client é a fachada de chamadas HTTP sobre um service.HTTP enfileirado
// num buffer.Buffer.
//
//	c := client.New(transport.NewHTTP(nil))
//	defer c.Close()
//
//	if err := c.Post(ctx, "foo", []byte("bar")); err != nil { ... }
//	body, err := c.Get(ctx, "foo")
//
// Todo erro devolvido é um *Error; use errors.As para inspecionar o Kind.
package client
