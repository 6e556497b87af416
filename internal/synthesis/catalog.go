package synthesis

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/eleven-am/audiogen/internal/shared"
)

const defaultStyle = "Neutral"

var errMalformedCatalog = errors.New("unexpected voice catalog format")

// fallbackCatalog is served whenever the remote catalog cannot be fetched or
// parsed, so the studio always has selectable voices.
var fallbackCatalog = []shared.VoiceOption{
	{ID: "en-US-JennyNeural", Name: "Jenny (en-US)", Gender: shared.GenderFemale, Style: "Calm"},
	{ID: "en-US-AriaNeural", Name: "Aria (en-US)", Gender: shared.GenderFemale, Style: "Calm"},
	{ID: "en-US-JaneNeural", Name: "Jane (en-US)", Gender: shared.GenderFemale, Style: "Neutral"},
	{ID: "en-US-AnaNeural", Name: "Ana (en-US)", Gender: shared.GenderFemale, Style: "Neutral"},
	{ID: "en-US-EmmaNeural", Name: "Emma (en-US)", Gender: shared.GenderFemale, Style: "Cheerful"},
	{ID: "en-US-MichelleNeural", Name: "Michelle (en-US)", Gender: shared.GenderFemale, Style: "Friendly"},
	{ID: "en-AU-NatashaNeural", Name: "Natasha (en-AU)", Gender: shared.GenderFemale, Style: "Friendly, Positive"},

	{ID: "en-US-GuyNeural", Name: "Guy (en-US)", Gender: shared.GenderMale, Style: "Neutral"},
	{ID: "en-US-AndrewNeural", Name: "Andrew (en-US)", Gender: shared.GenderMale, Style: "Neutral"},
	{ID: "en-US-AndrewMultilingualNeural", Name: "Andrew Multilingual (en-US)", Gender: shared.GenderMale, Style: "Neutral"},
	{ID: "en-US-BrianNeural", Name: "Brian (en-US)", Gender: shared.GenderMale, Style: "Approachable"},
	{ID: "en-CA-LiamNeural", Name: "Liam (en-CA)", Gender: shared.GenderMale, Style: "Neutral"},

	{ID: "zh-CN-XiaoxiaoNeural", Name: "晓晓 (zh-CN)", Gender: shared.GenderFemale, Style: "Neutral"},
	{ID: "zh-CN-XiaoyiNeural", Name: "晓伊 (zh-CN)", Gender: shared.GenderFemale, Style: "Gentle"},
	{ID: "zh-CN-XiaohanNeural", Name: "晓涵 (zh-CN)", Gender: shared.GenderFemale, Style: "Calm"},
	{ID: "zh-CN-XiaomengNeural", Name: "晓梦 (zh-CN)", Gender: shared.GenderFemale, Style: "Sweet"},
	{ID: "zh-CN-XiaoxuanNeural", Name: "晓萱 (zh-CN)", Gender: shared.GenderFemale, Style: "Elegant"},
	{ID: "zh-CN-XiaoyanNeural", Name: "晓颜 (zh-CN)", Gender: shared.GenderFemale, Style: "Cheerful"},

	{ID: "zh-CN-YunxiNeural", Name: "云希 (zh-CN)", Gender: shared.GenderMale, Style: "Gentle"},
	{ID: "zh-CN-YunjianNeural", Name: "云健 (zh-CN)", Gender: shared.GenderMale, Style: "Deep"},
	{ID: "zh-CN-YunyangNeural", Name: "云扬 (zh-CN)", Gender: shared.GenderMale, Style: "Energetic"},
	{ID: "zh-CN-YunzeNeural", Name: "云泽 (zh-CN)", Gender: shared.GenderMale, Style: "Calm"},
	{ID: "zh-CN-YunfengNeural", Name: "云枫 (zh-CN)", Gender: shared.GenderMale, Style: "Steady"},

	{ID: "en-US-AvaMultilingualNeural", Name: "Ava Multilingual (en-US)", Gender: shared.GenderFemale, Style: "Expressive"},
	{ID: "en-US-EmmaMultilingualNeural", Name: "Emma Multilingual (en-US)", Gender: shared.GenderFemale, Style: "Cheerful"},
	{ID: "en-US-BrianMultilingualNeural", Name: "Brian Multilingual (en-US)", Gender: shared.GenderMale, Style: "Approachable"},
}

// FallbackCatalog returns a copy of the built-in voice list.
func FallbackCatalog() []shared.VoiceOption {
	out := make([]shared.VoiceOption, len(fallbackCatalog))
	copy(out, fallbackCatalog)
	return out
}

type catalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

// parseCatalog maps a {"voices": [...]} body to voice options. Unusable
// entries are skipped with a warning; an unexpected shape is an error.
func parseCatalog(body []byte, logger *slog.Logger) ([]shared.VoiceOption, error) {
	var envelope struct {
		Voices json.RawMessage `json:"voices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errMalformedCatalog
	}

	var raw []json.RawMessage
	if len(envelope.Voices) == 0 || json.Unmarshal(envelope.Voices, &raw) != nil || raw == nil {
		return nil, errMalformedCatalog
	}

	voices := make([]shared.VoiceOption, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		var entry catalogEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			logger.Warn("skipping unreadable voice entry", "entry", string(item), "error", err)
			continue
		}
		if entry.ID == "" {
			logger.Warn("skipping voice due to missing id", "entry", string(item))
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			logger.Warn("skipping duplicate voice", "voice_id", entry.ID)
			continue
		}
		seen[entry.ID] = struct{}{}

		style := entry.Description
		if style == "" {
			style = defaultStyle
		}
		voices = append(voices, shared.VoiceOption{
			ID:     entry.ID,
			Name:   entry.Name,
			Gender: inferGender(entry.Gender, entry.Name),
			Style:  style,
		})
	}
	return voices, nil
}

// inferGender prefers the provider's field. Without one it looks for "male"
// in the display name, which also matches names that merely contain the
// substring.
func inferGender(explicit, name string) shared.Gender {
	if explicit != "" {
		if strings.EqualFold(explicit, "male") {
			return shared.GenderMale
		}
		return shared.GenderFemale
	}
	if strings.Contains(strings.ToLower(name), "male") {
		return shared.GenderMale
	}
	return shared.GenderFemale
}
