package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("FLOW_EXPAND_KEY", "pd-secret")
	t.Setenv("FLOW_EXPAND_EMPTY", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "base_url: https://ai.data.cloud", "base_url: https://ai.data.cloud"},
		{"set variable", "key: ${FLOW_EXPAND_KEY}", "key: pd-secret"},
		{"unset variable becomes empty", "key: ${FLOW_EXPAND_MISSING}", "key: "},
		{"unset with default", "user: ${FLOW_EXPAND_MISSING:-fallback}", "user: fallback"},
		{"set variable wins over default", "key: ${FLOW_EXPAND_KEY:-fallback}", "key: pd-secret"},
		{"empty variable falls back to default", "user: ${FLOW_EXPAND_EMPTY:-fallback}", "user: fallback"},
		{"multiple expansions", "${FLOW_EXPAND_KEY}/${FLOW_EXPAND_MISSING:-x}", "pd-secret/x"},
		{"dollar without braces untouched", "cost: $5", "cost: $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.in); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
