package models

import (
	"testing"
)

func TestSymptomRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *SymptomRequest
		wantErr bool
	}{
		{"empty query", &SymptomRequest{Query: ""}, true},
		{"too short", &SymptomRequest{Query: "ab"}, true},
		{"valid query", &SymptomRequest{Query: "headache and fever"}, false},
		{"sets default max results", &SymptomRequest{Query: "fever", MaxResults: 0}, false},
		{"caps max results", &SymptomRequest{Query: "fever", MaxResults: 500}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if tt.req.MaxResults == 0 {
					t.Error("expected default max results to be set")
				}
				if tt.req.MaxResults > 50 {
					t.Errorf("expected max results capped at 50, got %d", tt.req.MaxResults)
				}
			}
		})
	}
}
