package pipeline

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", "Here is the result:\n{\"a\": 1}", `{"a": 1}`},
		{"trailing prose", "{\"a\": 1}\nHope this helps!", `{"a": 1}`},
		{"truncated", `{"a": [1, 2`, `{"a": [1, 2`},
		{"no object", "sorry, I cannot help", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONBlock(tt.raw); got != tt.want {
				t.Errorf("extractJSONBlock(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced unchanged", `{"a": 1}`, `{"a": 1}`},
		{"one missing brace", `{"a": {"b": 1}`, `{"a": {"b": 1}}`},
		{"missing bracket and brace", `{"a": [1, 2`, `{"a": [1, 2]}`},
		{"unclosed string", `{"a": "text`, `{"a": "text"}`},
		{"brace inside string ignored", `{"a": "has } inside"}`, `{"a": "has } inside"}`},
		{"escaped quote", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.in)
			if got != tt.want {
				t.Errorf("repairJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
			var v interface{}
			if err := json.Unmarshal([]byte(got), &v); err != nil {
				t.Errorf("repaired output is not valid JSON: %v", err)
			}
		})
	}
}
