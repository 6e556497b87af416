package shared

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("ses_")
	if !strings.HasPrefix(id, "ses_") {
		t.Errorf("expected prefix ses_, got %s", id)
	}
	if len(id) != len("ses_")+32 {
		t.Errorf("unexpected id length %d", len(id))
	}
	if strings.Contains(id, "-") {
		t.Errorf("id should not contain dashes: %s", id)
	}
	if NewID("ses_") == id {
		t.Error("ids should be unique")
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		input string
		want  Gender
		ok    bool
	}{
		{"Male", GenderMale, true},
		{"male", GenderMale, true},
		{" FEMALE ", GenderFemale, true},
		{"neutral", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseGender(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseGender(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  Language
		ok    bool
	}{
		{"English", LanguageEnglish, true},
		{"en", LanguageEnglish, true},
		{"Chinese", LanguageChinese, true},
		{"CN", LanguageChinese, true},
		{"zh", LanguageChinese, true},
		{"fr", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLanguage(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLanguage(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLanguage_Code(t *testing.T) {
	if LanguageChinese.Code() != "zh" {
		t.Errorf("Chinese code = %s, want zh", LanguageChinese.Code())
	}
	if LanguageEnglish.Code() != "en" {
		t.Errorf("English code = %s, want en", LanguageEnglish.Code())
	}
	if Language("").Code() != "en" {
		t.Error("unset language should default to en")
	}
}

func TestAudioResult_Extension(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"audio/mpeg", "mp3"},
		{"audio/wav", "wav"},
		{"audio/wave", "wav"},
		{"audio/ogg; codecs=opus", "ogg"},
		{"audio/webm", "webm"},
		{"", "mp3"},
		{"not a mime", "mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			a := &AudioResult{MIMEType: tt.mimeType}
			if got := a.Extension(); got != tt.want {
				t.Errorf("Extension() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAvailabilityOf(t *testing.T) {
	if AvailabilityOf(true) != AvailabilityAvailable {
		t.Error("true should map to available")
	}
	if AvailabilityOf(false) != AvailabilityUnavailable {
		t.Error("false should map to unavailable")
	}
}
