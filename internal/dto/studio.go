package dto

type SetTextRequest struct {
	Text string `json:"text" example:"Hello there"`
}

type SetGenderRequest struct {
	Gender string `json:"gender" example:"Female"`
}

type SelectVoiceRequest struct {
	VoiceID string `json:"voice_id" example:"en-US-JennyNeural"`
}

type SetLanguageRequest struct {
	Language string `json:"language" example:"English"`
}

type SetSpeedRequest struct {
	Speed float64 `json:"speed" example:"1.25"`
}

type ProgressRequest struct {
	Current  float64 `json:"current" example:"12.5"`
	Duration float64 `json:"duration" example:"48.2"`
}

type PlayStateResponse struct {
	Playing bool `json:"playing" example:"true"`
}

type VoiceResponse struct {
	ID     string `json:"id" example:"en-US-JennyNeural"`
	Name   string `json:"name" example:"Jenny (en-US)"`
	Gender string `json:"gender" example:"Female"`
	Style  string `json:"style" example:"Calm"`
}

type VoiceListResponse struct {
	Voices []VoiceResponse `json:"voices"`
}
