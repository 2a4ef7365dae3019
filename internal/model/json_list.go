package model

import (
	"encoding/json"
	"strings"
)

func decodeStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func encodeStringList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			clean = append(clean, item)
		}
	}
	b, _ := json.Marshal(clean)
	return string(b)
}

// AllModels lists every table the service owns, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Information{},
		&Keyword{},
		&WorkExperience{},
		&Project{},
		&ChatExchange{},
		&ContactRequest{},
	}
}
