// Package types defines shared data structures used across the app.
package types

// Action is a logical operation fired by a global shortcut or the tray menu.
type Action string

const (
	ActionToggleVisibility Action = "toggle-visibility"
	ActionToggleMic        Action = "toggle-mic"
	ActionTogglePCAudio    Action = "toggle-pc-audio"
	ActionScreenshot       Action = "capture-screenshot"
	ActionClear            Action = "clear"
	ActionSubmit           Action = "submit"
)

// ProgrammingLanguage selects the language the assistant answers in.
type ProgrammingLanguage string

const (
	LangJavaScript ProgrammingLanguage = "javascript"
	LangTypeScript ProgrammingLanguage = "typescript"
	LangPython     ProgrammingLanguage = "python"
	LangJava       ProgrammingLanguage = "java"
	LangCPP        ProgrammingLanguage = "cpp"
	LangCSharp     ProgrammingLanguage = "csharp"
	LangGo         ProgrammingLanguage = "go"
	LangRust       ProgrammingLanguage = "rust"
	LangPHP        ProgrammingLanguage = "php"
	LangRuby       ProgrammingLanguage = "ruby"
	LangSwift      ProgrammingLanguage = "swift"
	LangKotlin     ProgrammingLanguage = "kotlin"
	LangSQL        ProgrammingLanguage = "sql"
	LangOther      ProgrammingLanguage = "other"
)

// Languages lists every supported programming language.
func Languages() []ProgrammingLanguage {
	return []ProgrammingLanguage{
		LangJavaScript, LangTypeScript, LangPython, LangJava, LangCPP,
		LangCSharp, LangGo, LangRust, LangPHP, LangRuby, LangSwift,
		LangKotlin, LangSQL, LangOther,
	}
}

// Valid reports whether l is a known language.
func (l ProgrammingLanguage) Valid() bool {
	for _, v := range Languages() {
		if l == v {
			return true
		}
	}
	return false
}

// AIResponse is the structured answer rendered in the overlay.
// Code is empty when the answer has no code section.
type AIResponse struct {
	Thoughts  string              `json:"thoughts"`
	Code      string              `json:"code,omitempty"`
	KeyPoints []string            `json:"keyPoints"`
	Language  ProgrammingLanguage `json:"language"`
}

// Source describes a capturable display or window.
type Source struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"` // PNG data URL
}

// UIState is the full view state pushed to the overlay frontend.
type UIState struct {
	Question           string              `json:"question"`
	Language           ProgrammingLanguage `json:"language"`
	MicStatus          string              `json:"micStatus"`
	PCAudioStatus      string              `json:"pcAudioStatus"`
	ScreenshotAttached bool                `json:"screenshotAttached"`
	Submitting         bool                `json:"submitting"`
	Degraded           bool                `json:"degraded"`
	TokensRemaining    int                 `json:"tokensRemaining"`
	Response           *AIResponse         `json:"response,omitempty"`
}
