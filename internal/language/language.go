// Package language holds the registry of supported target languages.
package language

import (
	"fmt"
	"sort"
)

// Default is the language articles are scraped in.
const Default = "en"

type Language struct {
	Code    string
	Name    string
	TTSCode string
}

// registry maps ISO codes to display names and Text-to-Speech locale codes.
// Languages without native TTS voices fall back to hi-IN or en-IN.
var registry = map[string]Language{
	"as":       {Code: "as", Name: "Assamese", TTSCode: "as-IN"},
	"bn":       {Code: "bn", Name: "Bengali", TTSCode: "bn-IN"},
	"bho":      {Code: "bho", Name: "Bhojpuri", TTSCode: "hi-IN"},
	"gu":       {Code: "gu", Name: "Gujarati", TTSCode: "gu-IN"},
	"hi":       {Code: "hi", Name: "Hindi", TTSCode: "hi-IN"},
	"kn":       {Code: "kn", Name: "Kannada", TTSCode: "kn-IN"},
	"kok":      {Code: "kok", Name: "Konkani", TTSCode: "hi-IN"},
	"mai":      {Code: "mai", Name: "Maithili", TTSCode: "hi-IN"},
	"ml":       {Code: "ml", Name: "Malayalam", TTSCode: "ml-IN"},
	"mni-Mtei": {Code: "mni-Mtei", Name: "Manipuri (Meitei)", TTSCode: "en-IN"},
	"mr":       {Code: "mr", Name: "Marathi", TTSCode: "mr-IN"},
	"or":       {Code: "or", Name: "Odia", TTSCode: "or-IN"},
	"pa":       {Code: "pa", Name: "Punjabi", TTSCode: "pa-IN"},
	"sa":       {Code: "sa", Name: "Sanskrit", TTSCode: "hi-IN"},
	"sd":       {Code: "sd", Name: "Sindhi", TTSCode: "hi-IN"},
	"ta":       {Code: "ta", Name: "Tamil", TTSCode: "ta-IN"},
	"te":       {Code: "te", Name: "Telugu", TTSCode: "te-IN"},
	"ur":       {Code: "ur", Name: "Urdu", TTSCode: "ur-IN"},
	"en":       {Code: "en", Name: "English", TTSCode: "en-IN"},
}

var ErrUnsupported = fmt.Errorf("unsupported language")

// Lookup returns the registry entry for code.
func Lookup(code string) (Language, error) {
	lang, ok := registry[code]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnsupported, code)
	}
	return lang, nil
}

func Supported(code string) bool {
	_, ok := registry[code]
	return ok
}

// Codes returns every registered language code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns every registered language sorted by code.
func All() []Language {
	langs := make([]Language, 0, len(registry))
	for _, code := range Codes() {
		langs = append(langs, registry[code])
	}
	return langs
}
