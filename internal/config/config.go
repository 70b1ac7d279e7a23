// Package config provides configuration helpers for readlens commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the readlens service.
const (
	DefaultListenPort   = "8080"
	DefaultCameraDevice = 0
	DefaultOCRLanguage  = "eng"
)

// ListenPort returns the HTTP listen port from READLENS_PORT.
// Falls back to the default if not set.
func ListenPort() string {
	if port := os.Getenv("READLENS_PORT"); port != "" {
		return port
	}
	return DefaultListenPort
}

// CameraDevice returns the camera device index from READLENS_CAMERA.
func CameraDevice() int {
	if dev := os.Getenv("READLENS_CAMERA"); dev != "" {
		if n, err := strconv.Atoi(dev); err == nil {
			return n
		}
	}
	return DefaultCameraDevice
}

// OCRLanguage returns the Tesseract language from READLENS_OCR_LANG.
func OCRLanguage() string {
	if lang := os.Getenv("READLENS_OCR_LANG"); lang != "" {
		return lang
	}
	return DefaultOCRLanguage
}

// ElevenLabsKey returns the ElevenLabs API key from ELEVENLABS_API_KEY.
// Returns empty when not set; callers decide whether speech is required.
func ElevenLabsKey() string {
	return os.Getenv("ELEVENLABS_API_KEY")
}

// ElevenLabsVoice returns the voice ID from ELEVENLABS_VOICE_ID.
func ElevenLabsVoice() string {
	return os.Getenv("ELEVENLABS_VOICE_ID")
}

// VisionBaseURL returns the OpenAI-compatible vision endpoint from
// READLENS_VISION_URL. Empty means the local Tesseract engine is used.
func VisionBaseURL() string {
	return os.Getenv("READLENS_VISION_URL")
}

// VisionAPIKey returns the vision API key from READLENS_VISION_KEY.
func VisionAPIKey() string {
	return os.Getenv("READLENS_VISION_KEY")
}

// LogLevel returns the log level from READLENS_LOG_LEVEL ("debug", "info",
// "warn", "error").
func LogLevel() string {
	if lvl := os.Getenv("READLENS_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}
