package infra

import (
	"encoding/json"
	"fmt"
	"strings"

	"service-pipeline/middleware/admission/domain"
)

// helpers compartilhados pelos stores que publicam eventos em brokers.

func encodeEvent(ev domain.StatsEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode admission event: %w", err)
	}
	return b, nil
}

// eventSubject monta "<prefix>.<source>.<outcome>", ex: admission.authorization.denied.
func eventSubject(prefix string, ev domain.StatsEvent) string {
	source := ev.Source
	if source == "" {
		source = "unknown"
	}
	parts := []string{source, ev.Outcome()}
	if p := strings.Trim(prefix, "."); p != "" {
		parts = append([]string{p}, parts...)
	}
	return strings.Join(parts, ".")
}
