package shared

import (
	"mime"
	"strings"

	"github.com/google/uuid"
)

func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, true
	case "female":
		return GenderFemale, true
	}
	return "", false
}

type Language string

const (
	LanguageEnglish Language = "English"
	LanguageChinese Language = "Chinese"
)

func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en":
		return LanguageEnglish, true
	case "chinese", "zh", "cn":
		return LanguageChinese, true
	}
	return "", false
}

// Code is the two-letter hint sent to the transcription service.
func (l Language) Code() string {
	if l == LanguageChinese {
		return "zh"
	}
	return "en"
}

type VoiceOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Style  string `json:"style"`
}

type AudioResult struct {
	Data     []byte
	MIMEType string
}

// Extension maps the MIME type to a file extension for downloads.
func (a *AudioResult) Extension() string {
	mediaType, _, err := mime.ParseMediaType(a.MIMEType)
	if err != nil {
		mediaType = a.MIMEType
	}
	switch mediaType {
	case "audio/wav", "audio/wave", "audio/x-wav":
		return "wav"
	case "audio/ogg":
		return "ogg"
	case "audio/webm":
		return "webm"
	case "audio/flac":
		return "flac"
	case "audio/opus":
		return "opus"
	default:
		return "mp3"
	}
}

type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

func AvailabilityOf(ok bool) Availability {
	if ok {
		return AvailabilityAvailable
	}
	return AvailabilityUnavailable
}
