package mcpserver

import (
	"fmt"
	"strings"
)

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func hasNumber(args map[string]any, key string) bool {
	_, ok := args[key].(float64)
	return ok
}

func boolPtr(v bool) *bool { return &v }
