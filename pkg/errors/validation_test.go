package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "clk", false},
		{"bus bit", "data[7]", false},
		{"hierarchical", "u_core.alu.sum[3]", false},
		{"escaped identifier", `\bus[0] `, false},
		{"anonymous", "$abc$1234", false},
		{"empty", "", true},
		{"newline", "a\nb", true},
		{"nul", "a\x00b", true},
		{"too long", strings.Repeat("n", maxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("net", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}
