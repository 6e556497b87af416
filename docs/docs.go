// Package docs registers the OpenAPI description served under /swagger.
// Paths mirror the @Router annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/audio/speech": {
            "post": {
                "description": "Synthesizes the input text with the given voice and returns the audio bytes.",
                "consumes": ["application/json"],
                "produces": ["audio/mpeg", "audio/wav", "audio/ogg"],
                "tags": ["audio"],
                "summary": "Create speech",
                "parameters": [
                    {"description": "Speech synthesis request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/audio.SpeechRequest"}}
                ],
                "responses": {
                    "200": {"description": "Audio data", "schema": {"type": "file"}},
                    "400": {"description": "Invalid request (missing input or voice, input too long)", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "502": {"description": "Synthesis failed", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/audio/transcriptions": {
            "post": {
                "description": "Transcribes an uploaded audio clip. The language hint is optional.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["audio"],
                "summary": "Create transcription",
                "parameters": [
                    {"type": "file", "description": "Audio file to transcribe (max 25MB)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "English or Chinese", "name": "language", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Transcription result", "schema": {"$ref": "#/definitions/audio.TranscriptionResponse"}},
                    "400": {"description": "Invalid request (missing file)", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "413": {"description": "File too large (max 25MB)", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "502": {"description": "Transcription failed", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/audio/voices": {
            "get": {
                "description": "Returns the remote voice catalog, or the built-in catalog when the service is unreachable.",
                "produces": ["application/json"],
                "tags": ["audio"],
                "summary": "List voices",
                "responses": {
                    "200": {"description": "List of available voices", "schema": {"$ref": "#/definitions/audio.VoicesListResponse"}},
                    "500": {"description": "Failed to list voices", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/state": {
            "get": {
                "description": "Returns the full state of the caller's studio session",
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Get studio state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}}
                }
            }
        },
        "/api/v1/studio/events": {
            "get": {
                "description": "Server-Sent Events stream of state snapshots; the first event is the current state",
                "produces": ["text/event-stream"],
                "tags": ["studio"],
                "summary": "Stream studio state",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/studio/voices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "List voices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VoiceListResponse"}}
                }
            }
        },
        "/api/v1/studio/text": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Set text",
                "parameters": [
                    {"description": "Text to synthesize", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetTextRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/text/upload": {
            "post": {
                "description": "Replaces the text with the contents of an uploaded .txt file",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Upload text file",
                "parameters": [
                    {"type": "file", "description": "Plain text file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/gender": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Set gender filter",
                "parameters": [
                    {"description": "Male or Female", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetGenderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/voice": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Select voice",
                "parameters": [
                    {"description": "Voice ID from the catalog", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SelectVoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/language": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Set language",
                "parameters": [
                    {"description": "English or Chinese", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetLanguageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/generate": {
            "post": {
                "description": "Synthesizes the current text with the selected voice",
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Generate speech",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/shared.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/reset": {
            "post": {
                "description": "Clears the generated audio and the error; text and voice are kept",
                "produces": ["application/json"],
                "tags": ["studio"],
                "summary": "Reset result",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/studio.State"}}
                }
            }
        },
        "/api/v1/studio/record": {
            "get": {
                "description": "WebSocket microphone. Binary messages are audio fragments; a text \"stop\" or closing the socket ends the recording and starts transcription. Opening the socket while a recording is active stops it.",
                "tags": ["studio"],
                "summary": "Record voice input",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/api/v1/studio/playback/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Toggle playback",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PlayStateResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/playback/speed": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Set playback speed",
                "parameters": [
                    {"description": "One of 0.5, 0.75, 1, 1.25, 1.5, 2", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetSpeedRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/playback.Snapshot"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/playback/progress": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Report playback progress",
                "parameters": [
                    {"description": "Current position and duration in seconds", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/playback.Snapshot"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/playback/ended": {
            "post": {
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Report end of playback",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/playback.Snapshot"}}
                }
            }
        },
        "/api/v1/studio/download": {
            "get": {
                "description": "Returns the generated audio as an attachment",
                "produces": ["application/octet-stream"],
                "tags": ["playback"],
                "summary": "Download audio",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/api/v1/studio/session": {
            "delete": {
                "description": "Closes the caller's studio session and releases its resources",
                "tags": ["studio"],
                "summary": "End session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/media/{id}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["playback"],
                "summary": "Stream generated audio",
                "parameters": [
                    {"type": "string", "description": "Media handle ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/shared.APIError"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Checks the speech and transcription services and, when configured, redis",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/health/sessions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "List studio sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "audio.SpeechRequest": {
            "type": "object",
            "properties": {
                "input": {"type": "string", "example": "Hello there"},
                "voice": {"type": "string", "example": "en-US-JennyNeural"},
                "language": {"type": "string", "example": "English"}
            }
        },
        "audio.TranscriptionResponse": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "audio.VoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "style": {"type": "string"}
            }
        },
        "audio.VoicesListResponse": {
            "type": "object",
            "properties": {
                "voices": {"type": "array", "items": {"$ref": "#/definitions/audio.VoiceResponse"}}
            }
        },
        "dto.SetTextRequest": {
            "type": "object",
            "properties": {"text": {"type": "string", "example": "Hello there"}}
        },
        "dto.SetGenderRequest": {
            "type": "object",
            "properties": {"gender": {"type": "string", "example": "Female"}}
        },
        "dto.SelectVoiceRequest": {
            "type": "object",
            "properties": {"voice_id": {"type": "string", "example": "en-US-JennyNeural"}}
        },
        "dto.SetLanguageRequest": {
            "type": "object",
            "properties": {"language": {"type": "string", "example": "English"}}
        },
        "dto.SetSpeedRequest": {
            "type": "object",
            "properties": {"speed": {"type": "number", "example": 1.25}}
        },
        "dto.ProgressRequest": {
            "type": "object",
            "properties": {
                "current": {"type": "number", "example": 12.5},
                "duration": {"type": "number", "example": 48.2}
            }
        },
        "dto.PlayStateResponse": {
            "type": "object",
            "properties": {"playing": {"type": "boolean", "example": true}}
        },
        "dto.VoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "en-US-JennyNeural"},
                "name": {"type": "string", "example": "Jenny (en-US)"},
                "gender": {"type": "string", "example": "Female"},
                "style": {"type": "string", "example": "Calm"}
            }
        },
        "dto.VoiceListResponse": {
            "type": "object",
            "properties": {
                "voices": {"type": "array", "items": {"$ref": "#/definitions/dto.VoiceResponse"}}
            }
        },
        "playback.Snapshot": {
            "type": "object",
            "properties": {
                "loaded": {"type": "boolean"},
                "url": {"type": "string"},
                "mime_type": {"type": "string"},
                "size": {"type": "integer"},
                "playing": {"type": "boolean"},
                "speed": {"type": "number"},
                "percent": {"type": "number"},
                "elapsed": {"type": "string"},
                "total": {"type": "string"}
            }
        },
        "shared.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "shared.VoiceOption": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "gender": {"type": "string"},
                "style": {"type": "string"}
            }
        },
        "studio.ServiceStatus": {
            "type": "object",
            "properties": {
                "tts": {"type": "string"},
                "whisper": {"type": "string"}
            }
        },
        "studio.VoiceInputState": {
            "type": "object",
            "properties": {
                "recording": {"type": "boolean"},
                "transcribing": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "studio.State": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "services": {"$ref": "#/definitions/studio.ServiceStatus"},
                "voices": {"type": "array", "items": {"$ref": "#/definitions/shared.VoiceOption"}},
                "voices_loaded": {"type": "boolean"},
                "gender": {"type": "string"},
                "voice": {"$ref": "#/definitions/shared.VoiceOption"},
                "language": {"type": "string"},
                "text": {"type": "string"},
                "is_generating": {"type": "boolean"},
                "error": {"type": "string"},
                "voice_input": {"$ref": "#/definitions/studio.VoiceInputState"},
                "playback": {"$ref": "#/definitions/playback.Snapshot"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Audiogen Studio API",
	Description:      "Text-to-speech and speech-to-text studio backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
