package assistant

import (
	"reflect"
	"testing"

	"go.ghostpane.dev/ghostpane/internal/types"
)

func TestParseStructured(t *testing.T) {
	content := "THOUGHTS: foo\nCODE:\n```py\nprint(1)\n```\nKEY_POINTS:\n- a\n- b"

	got := Parse(content, types.LangPython)

	if got.Thoughts != "foo" {
		t.Fatalf("thoughts = %q, want %q", got.Thoughts, "foo")
	}
	if got.Code != "print(1)" {
		t.Fatalf("code = %q, want %q", got.Code, "print(1)")
	}
	if !reflect.DeepEqual(got.KeyPoints, []string{"a", "b"}) {
		t.Fatalf("keyPoints = %v, want [a b]", got.KeyPoints)
	}
	if got.Language != types.LangPython {
		t.Fatalf("language = %s, want python", got.Language)
	}
}

func TestParseCaseInsensitiveHeaders(t *testing.T) {
	content := "thoughts: reasoning here\ncode:\n```go\nreturn nil\n```\nKey Points:\n- first\n- second"

	got := Parse(content, types.LangGo)

	if got.Thoughts != "reasoning here" {
		t.Fatalf("thoughts = %q", got.Thoughts)
	}
	if got.Code != "return nil" {
		t.Fatalf("code = %q", got.Code)
	}
	if !reflect.DeepEqual(got.KeyPoints, []string{"first", "second"}) {
		t.Fatalf("keyPoints = %v", got.KeyPoints)
	}
}

func TestParseMissingKeyPointsUsesFallback(t *testing.T) {
	got := Parse("THOUGHTS: only reasoning, nothing else", types.LangJavaScript)

	if !reflect.DeepEqual(got.KeyPoints, FallbackKeyPoints) {
		t.Fatalf("keyPoints = %v, want fallback", got.KeyPoints)
	}
	if len(got.KeyPoints) != 3 {
		t.Fatal("fallback must have exactly 3 items")
	}
}

func TestParseNoCodeSection(t *testing.T) {
	got := Parse("THOUGHTS: conceptual answer\nKEY_POINTS:\n- x", types.LangJavaScript)

	if got.Code != "" {
		t.Fatalf("expected empty code, got %q", got.Code)
	}
}

func TestParseUnstructuredText(t *testing.T) {
	content := "Just a plain answer with no headers at all.\n\nSecond paragraph."

	got := Parse(content, types.LangOther)

	if got.Thoughts != "Just a plain answer with no headers at all." {
		t.Fatalf("thoughts = %q", got.Thoughts)
	}
	if !reflect.DeepEqual(got.KeyPoints, FallbackKeyPoints) {
		t.Fatalf("keyPoints = %v, want fallback", got.KeyPoints)
	}
}

func TestParseNumberedKeyPoints(t *testing.T) {
	content := "THOUGHTS: t\nKEY_POINTS:\n1. alpha\n2. beta\n3. gamma"

	got := Parse(content, types.LangJava)

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got.KeyPoints, want) {
		t.Fatalf("keyPoints = %v, want %v", got.KeyPoints, want)
	}
}

func TestParseBareCodeWithoutFences(t *testing.T) {
	content := "THOUGHTS: t\nCODE:\nx = 1\nKEY_POINTS:\n- p"

	got := Parse(content, types.LangPython)

	if got.Code != "x = 1" {
		t.Fatalf("code = %q", got.Code)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   types.AIResponse
		want func(types.AIResponse) bool
	}{
		{
			"empty_keypoints_get_fallback",
			types.AIResponse{Thoughts: "t"},
			func(r types.AIResponse) bool { return reflect.DeepEqual(r.KeyPoints, FallbackKeyPoints) },
		},
		{
			"blank_keypoints_filtered",
			types.AIResponse{KeyPoints: []string{" ", "keep", ""}},
			func(r types.AIResponse) bool { return reflect.DeepEqual(r.KeyPoints, []string{"keep"}) },
		},
		{
			"code_trimmed",
			types.AIResponse{Code: "  x\n", KeyPoints: []string{"p"}},
			func(r types.AIResponse) bool { return r.Code == "x" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); !tt.want(got) {
				t.Fatalf("Normalize produced %+v", got)
			}
		})
	}
}
