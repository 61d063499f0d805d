// Package assistant holds the question/answer session state and the
// best-effort parser for model output sections.
package assistant

import (
	"regexp"
	"strings"

	"go.ghostpane.dev/ghostpane/internal/types"
)

// FallbackKeyPoints replaces an unparseable key-points section so the
// rendered answer never has an empty, confusing section.
var FallbackKeyPoints = []string{
	"Review the solution above",
	"Consider edge cases",
	"Test with sample inputs",
}

var (
	// Section headers are case-insensitive and may be absent entirely.
	headerRe = regexp.MustCompile(`(?i)(thoughts?|code|key[_\s]?points?)\s*:`)
	fenceRe  = regexp.MustCompile("(?s)```[\\w+-]*\\n?(.*?)```")
	bulletRe = regexp.MustCompile(`\n[-•*]\s*|\n\d+\.\s*`)
)

// Parse extracts the thoughts, code and key-points sections from raw
// model output. This is inherently heuristic: the goal is tolerance, not
// correctness. Missing sections degrade to sensible fallbacks and the
// parser never fails.
func Parse(content string, lang types.ProgrammingLanguage) types.AIResponse {
	sections := splitSections(content)

	thoughts := strings.TrimSpace(sections["thoughts"])
	if thoughts == "" {
		thoughts = firstParagraph(content)
	}

	code := extractCode(sections["code"])

	keyPoints := splitBullets(sections["keypoints"])
	if len(keyPoints) == 0 {
		keyPoints = FallbackKeyPoints
	}

	return types.AIResponse{
		Thoughts:  thoughts,
		Code:      code,
		KeyPoints: keyPoints,
		Language:  lang,
	}
}

// Normalize fills the gaps in an already-structured response with the
// same fallbacks Parse uses.
func Normalize(r types.AIResponse) types.AIResponse {
	r.Thoughts = strings.TrimSpace(r.Thoughts)
	r.Code = strings.TrimSpace(r.Code)

	points := r.KeyPoints[:0:0]
	for _, p := range r.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		points = FallbackKeyPoints
	}
	r.KeyPoints = points
	return r
}

// splitSections slices content by recognized headers. Text before the
// first header is ignored here; Parse falls back to it for thoughts.
func splitSections(content string) map[string]string {
	sections := make(map[string]string)

	matches := headerRe.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		name := canonicalHeader(content[m[2]:m[3]])
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if _, ok := sections[name]; !ok {
			sections[name] = content[m[1]:end]
		}
	}
	return sections
}

func canonicalHeader(h string) string {
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, " ", "")
	switch {
	case strings.HasPrefix(h, "thought"):
		return "thoughts"
	case strings.HasPrefix(h, "code"):
		return "code"
	default:
		return "keypoints"
	}
}

// extractCode prefers the inside of a fenced block; without fences the
// whole section is taken verbatim. Empty means "no code section".
func extractCode(section string) string {
	if m := fenceRe.FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(section)
}

func splitBullets(section string) []string {
	var points []string
	for _, p := range bulletRe.Split("\n"+section, -1) {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	return points
}

func firstParagraph(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "\n\n"); i > 0 {
		return content[:i]
	}
	return content
}
