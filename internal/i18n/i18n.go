// Package i18n selects the help-text language. The language is detected
// exactly once at startup and injected into command construction; nothing
// reads the process environment after that.
package i18n

import "strings"

// Lang identifies a help-text language.
type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
)

// Detect maps the value of DDOGCTL_LANG to a Lang. Defaults to Spanish.
func Detect(value string) Lang {
	v := strings.ToLower(value)
	switch {
	case strings.HasPrefix(v, "en"):
		return LangEN
	case strings.HasPrefix(v, "es"):
		return LangES
	default:
		return LangES
	}
}

// Translator picks strings for one fixed language.
type Translator struct {
	lang Lang
}

// New returns a Translator for the given language.
func New(lang Lang) *Translator {
	return &Translator{lang: lang}
}

// Lang returns the selected language.
func (tr *Translator) Lang() Lang {
	return tr.lang
}

// T returns es or en according to the selected language.
func (tr *Translator) T(es, en string) string {
	if tr.lang == LangEN {
		return en
	}
	return es
}
