package main

import (
	"github.com/eleven-am/audiogen/internal/bootstrap"
)

// @title Audiogen Studio API
// @version 1.0.0
// @description Text-to-speech and speech-to-text studio backend

// @BasePath /

func main() {
	bootstrap.Run()
}
