package model

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConfig_MarshalYAML_DurationsAsStrings(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	text := string(data)

	wants := []string{
		"timeout: 30s",
		"cache_ttl: 24h0m0s",
		"default_ttl: 1h0m0s",
		"cleanup_interval: 10m0s",
	}
	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Errorf("Expected rendered config to contain %q, got:\n%s", want, text)
		}
	}

	if strings.Contains(text, "30000000000") {
		t.Error("Durations must not render as nanosecond integers")
	}
	if strings.Contains(text, "api_key") {
		t.Error("API keys must never appear in rendered config")
	}
}
