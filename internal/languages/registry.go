// Package languages holds the canonical registry of languages the platform
// understands. Prompt wording, profile choices and text-to-speech voices all
// resolve through it, so adding a language is a registry edit rather than a
// code change.
package languages

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var rawRegistry []byte

// Language is one registry entry.
type Language struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Profile bool   `yaml:"profile"`
	Voice   string `yaml:"voice"`
}

type registryFile struct {
	Default   string     `yaml:"default"`
	Languages []Language `yaml:"languages"`
}

// Registry resolves language codes to display names, voices and profile
// eligibility. Unknown codes fall back to the default language's name so a
// stale or hand-edited profile never breaks prompt construction.
type Registry struct {
	def    string
	order  []string
	byCode map[string]Language
}

// NewRegistry parses the embedded registry file.
func NewRegistry() (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(rawRegistry, &file); err != nil {
		return nil, fmt.Errorf("failed to parse language registry: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("language registry is empty")
	}
	reg := &Registry{
		def:    file.Default,
		byCode: make(map[string]Language, len(file.Languages)),
	}
	for _, lang := range file.Languages {
		if lang.Code == "" || lang.Name == "" {
			return nil, fmt.Errorf("language registry entry missing code or name")
		}
		if _, exists := reg.byCode[lang.Code]; exists {
			return nil, fmt.Errorf("duplicate language code %q in registry", lang.Code)
		}
		reg.byCode[lang.Code] = lang
		reg.order = append(reg.order, lang.Code)
	}
	if _, ok := reg.byCode[reg.def]; !ok {
		return nil, fmt.Errorf("default language %q not present in registry", reg.def)
	}
	return reg, nil
}

// DefaultCode returns the code used when a user has no stored preference.
func (r *Registry) DefaultCode() string {
	return r.def
}

// Name returns the display name for a code, falling back to the default
// language's name for unknown codes.
func (r *Registry) Name(code string) string {
	if lang, ok := r.byCode[code]; ok {
		return lang.Name
	}
	return r.byCode[r.def].Name
}

// Known reports whether the code exists in the registry at all.
func (r *Registry) Known(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// IsProfileLanguage reports whether users may select the code as their
// preferred learning language.
func (r *Registry) IsProfileLanguage(code string) bool {
	lang, ok := r.byCode[code]
	return ok && lang.Profile
}

// Voice returns the text-to-speech voice for a code. The second return is
// false when the language has no audio support.
func (r *Registry) Voice(code string) (string, bool) {
	lang, ok := r.byCode[code]
	if !ok || lang.Voice == "" {
		return "", false
	}
	return lang.Voice, true
}

// ProfileCodes lists the selectable profile languages in registry order.
func (r *Registry) ProfileCodes() []string {
	codes := make([]string, 0, len(r.order))
	for _, code := range r.order {
		if r.byCode[code].Profile {
			codes = append(codes, code)
		}
	}
	return codes
}

// Codes lists every registered language code in registry order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
