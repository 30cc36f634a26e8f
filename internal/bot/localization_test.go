package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalization_Languages(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"ru", LanguageRussian},
		{"en", LanguageEnglish},
		{"system", LanguageRussian},
		{"de", LanguageRussian},
		{"", LanguageRussian},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewLocalization(tt.lang).GetCurrentLanguage(), tt.lang)
	}
}

func TestLocalization_EveryKeyTranslated(t *testing.T) {
	l := NewLocalization("ru")
	for lang, texts := range l.texts {
		for key := range l.texts[LanguageRussian] {
			assert.NotEmpty(t, texts[key], "missing %s text for %s", lang, key)
		}
	}
}

func TestLocalization_Fallbacks(t *testing.T) {
	l := NewLocalization("en")
	assert.Equal(t, "unknown_key", l.GetText("unknown_key"))
	assert.Equal(t, "❌ Error: boom", l.Format(KeyDownloadFailed, "boom"))
}
