package model

// LanguageOption is one entry of the voting form's language list.
type LanguageOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Languages lists the choices offered by the voting form. The server does
// not restrict votes to this list.
var Languages = []LanguageOption{
	{Value: "javascript", Label: "JavaScript"},
	{Value: "python", Label: "Python"},
	{Value: "java", Label: "Java"},
	{Value: "typescript", Label: "TypeScript"},
	{Value: "csharp", Label: "C#"},
	{Value: "cpp", Label: "C++"},
	{Value: "php", Label: "PHP"},
	{Value: "ruby", Label: "Ruby"},
	{Value: "go", Label: "Go"},
	{Value: "rust", Label: "Rust"},
	{Value: "swift", Label: "Swift"},
	{Value: "kotlin", Label: "Kotlin"},
	{Value: "dart", Label: "Dart"},
	{Value: "scala", Label: "Scala"},
	{Value: "other", Label: "Other"},
}

// LanguageLabel returns the form label for value, if it is a listed choice.
func LanguageLabel(value string) (string, bool) {
	for _, l := range Languages {
		if l.Value == value {
			return l.Label, true
		}
	}
	return "", false
}
