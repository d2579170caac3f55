package tools

import (
	"context"
	"strings"
	"testing"
)

func TestCalcEvaluates(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2+2", "4"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 / 4", "2.5"},
		{"-3 + 5", "2"},
		{"2 * -3", "-6"},
		{"1.5 + 2.5", "4"},
		{"((1))", "1"},
	}

	calc := NewCalcTool()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := calc.Execute(context.Background(), tt.expr)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !result.Success() {
				t.Fatalf("expected success, got %v", result.Error)
			}
			if result.Output != tt.want {
				t.Errorf("calc(%q) = %q, want %q", tt.expr, result.Output, tt.want)
			}
		})
	}
}

func TestCalcRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"garbage", "hello"},
		{"unclosed paren", "(1 + 2"},
		{"trailing operator", "1 +"},
		{"division by zero", "1 / 0"},
		{"trailing garbage", "1 + 2 x"},
	}

	calc := NewCalcTool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Execute(context.Background(), tt.expr)
			if err != nil {
				t.Fatalf("Execute returned hard error: %v", err)
			}
			if result.Success() {
				t.Errorf("calc(%q) should fail, got %q", tt.expr, result.Output)
			}
		})
	}
}

func TestCalcMetadata(t *testing.T) {
	meta := NewCalcTool().Metadata()
	if meta.Name != "calc" {
		t.Errorf("unexpected name %q", meta.Name)
	}
	if !strings.Contains(meta.Description, "arithmetic") {
		t.Errorf("description should mention arithmetic: %q", meta.Description)
	}
}
