// Package transport liga o pipeline à rede: HTTP envia requisições de cliente por
// um *http.Client e Proxy encaminha requisições de servidor para um upstream.
package transport
