// Package tts synthesizes narration audio through the Google
// Text-to-Speech API.
package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"khabar/internal/language"
)

// Synthesizer is the narrow client surface for speech synthesis.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
}

type GoogleSynthesizer struct {
	svc *texttospeech.Service
}

func NewGoogleSynthesizer(ctx context.Context, credentialsFile string) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create texttospeech service: %w", err)
	}
	return &GoogleSynthesizer{svc: svc}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voiceName,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding:    "MP3",
			EffectsProfileId: []string{"high-quality-studio"},
		},
	}

	resp, err := g.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesize request failed: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	return audio, nil
}

// Narrator wraps a Synthesizer with the voice fallback chain.
type Narrator struct {
	synth Synthesizer
	log   *slog.Logger
}

func NewNarrator(synth Synthesizer, log *slog.Logger) *Narrator {
	return &Narrator{synth: synth, log: log}
}

// VoiceName is the preferred studio voice for a TTS locale.
func VoiceName(ttsCode string) string {
	return ttsCode + "-Chirp3-HD-Kore"
}

// Narrate synthesizes text for lang, trying the studio voice first, then
// the locale's default voice, then a generic en-IN voice. Only when all
// three fail does it return an error.
func (n *Narrator) Narrate(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	attempts := []struct {
		code string
		name string
	}{
		{lang.TTSCode, VoiceName(lang.TTSCode)},
		{lang.TTSCode, ""},
		{"en-IN", ""},
	}

	var lastErr error
	for _, attempt := range attempts {
		audio, err := n.synth.Synthesize(ctx, text, attempt.code, attempt.name)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		n.log.Warn("voice attempt failed",
			"language", lang.Code, "tts_code", attempt.code, "voice", attempt.name, "error", err)
	}

	return nil, fmt.Errorf("all voices failed for %s: %w", lang.Code, lastErr)
}
