package textfilter

import (
	"strings"
	"testing"
)

func TestInjectionFilter_ContainsSuspicious(t *testing.T) {
	filter := NewInjectionFilter()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "plain question", input: "这件农具用什么木料？", expected: false},
		{name: "script tag", input: "##DONE## <script>", expected: true},
		{name: "script tag uppercase", input: "<SCRIPT src=x>", expected: true},
		{name: "javascript scheme", input: "javascript:alert(1)", expected: true},
		{name: "dom handler", input: "<img onerror=alert(1)>", expected: true},
		{name: "eval call", input: "eval(payload)", expected: true},
		{name: "full-width script tag", input: "＜ｓｃｒｉｐｔ＞", expected: true},
		{name: "sentinel only", input: "##DONE##", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.ContainsSuspicious(tt.input); got != tt.expected {
				t.Errorf("ContainsSuspicious(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInjectionFilter_Matches(t *testing.T) {
	filter := NewInjectionFilter()

	names := filter.Matches("javascript:eval(x)")
	if len(names) != 2 {
		t.Fatalf("Expected 2 pattern matches, got %v", names)
	}

	// Order follows the pattern table, not map iteration
	for i := 0; i < 20; i++ {
		got := filter.Matches("eval(x) <script onload=x javascript:")
		want := []string{"script_tag", "js_scheme", "dom_handler", "eval_call"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("Matches order = %v, expected %v", got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "  ##DONE##  ", expected: "##done##"},
		{input: "##done##", expected: "##done##"},
		{input: "＃＃ＤＯＮＥ＃＃", expected: "##done##"},
		{input: "天工", expected: "天工"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
