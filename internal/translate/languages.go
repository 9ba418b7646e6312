package translate

// Language is a supported language code/name pair.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the languages offered for conversations.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ar", Name: "Arabic"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "hi", Name: "Hindi"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "ko", Name: "Korean"},
	{Code: "ja", Name: "Japanese"},
	{Code: "it", Name: "Italian"},
	{Code: "nl", Name: "Dutch"},
}

// LanguageName returns the display name for a language code, or the code
// itself with the first letter upper-cased if unknown.
func LanguageName(code string) string {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return lang.Name
		}
	}
	if code == "" {
		return code
	}
	b := []byte(code)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// IsSupported reports whether a language code is in the supported set.
func IsSupported(code string) bool {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return true
		}
	}
	return false
}
