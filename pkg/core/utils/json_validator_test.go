package utils

import (
	"strings"
	"testing"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"strict JSON", `{"name": "roe", "value": 1.5}`},
		{"markdown fence", "```json\n{\"name\": \"roe\", \"value\": 1.5}\n```"},
		{"trailing comma", `{"name": "roe", "value": 1.5,}`},
		{"single quotes", `{'name': 'roe', 'value': 1.5}`},
		{"hjson unquoted keys", "{\n  name: roe\n  value: 1.5\n}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			if _, err := SmartParse(tc.input, &p); err != nil {
				t.Fatalf("SmartParse failed: %v", err)
			}
			if p.Name != "roe" || p.Value != 1.5 {
				t.Errorf("decoded = %+v", p)
			}
		})
	}
}

func TestSmartParse_Hopeless(t *testing.T) {
	var p payload
	_, err := SmartParse("not even close to structured data", &p)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "SMART_PARSE_FAILED") {
		t.Errorf("error = %v", err)
	}
}

func TestValidateMarkdown(t *testing.T) {
	if !ValidateMarkdown("# Heading\n\nSome **bold** commentary.\n\n- item\n") {
		t.Error("valid markdown rejected")
	}
}

func TestCleanMarkdown(t *testing.T) {
	in := "```markdown\n# Title\nBody\n```"
	got := CleanMarkdown(in)
	if strings.Contains(got, "```") {
		t.Errorf("fences not stripped: %q", got)
	}
	if !strings.Contains(got, "# Title") {
		t.Errorf("content lost: %q", got)
	}
}
