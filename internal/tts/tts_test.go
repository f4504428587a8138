package tts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khabar/internal/language"
	"khabar/internal/logger"
)

// fakeSynth records every voice attempt and fails the configured ones.
type fakeSynth struct {
	attempts []string
	fail     map[string]bool
	failAll  bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text, languageCode, voiceName string) ([]byte, error) {
	key := languageCode + "/" + voiceName
	f.attempts = append(f.attempts, key)
	if f.failAll || f.fail[key] {
		return nil, fmt.Errorf("no such voice: %s", key)
	}
	return []byte("mp3:" + text), nil
}

func TestNarratePreferredVoice(t *testing.T) {
	synth := &fakeSynth{}
	n := NewNarrator(synth, logger.With("test"))

	hi, err := language.Lookup("hi")
	require.NoError(t, err)

	audio, err := n.Narrate(context.Background(), "some text", hi)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3:some text"), audio)
	assert.Equal(t, []string{"hi-IN/hi-IN-Chirp3-HD-Kore"}, synth.attempts)
}

func TestNarrateFallbackChain(t *testing.T) {
	synth := &fakeSynth{fail: map[string]bool{
		"ta-IN/ta-IN-Chirp3-HD-Kore": true,
		"ta-IN/":                     true,
	}}
	n := NewNarrator(synth, logger.With("test"))

	ta, err := language.Lookup("ta")
	require.NoError(t, err)

	audio, err := n.Narrate(context.Background(), "text", ta)
	require.NoError(t, err)
	assert.NotEmpty(t, audio)
	assert.Equal(t, []string{
		"ta-IN/ta-IN-Chirp3-HD-Kore",
		"ta-IN/",
		"en-IN/",
	}, synth.attempts)
}

func TestNarrateAllVoicesFail(t *testing.T) {
	synth := &fakeSynth{failAll: true}
	n := NewNarrator(synth, logger.With("test"))

	bn, err := language.Lookup("bn")
	require.NoError(t, err)

	_, err = n.Narrate(context.Background(), "text", bn)
	require.Error(t, err)
	assert.Len(t, synth.attempts, 3)
}

func TestVoiceName(t *testing.T) {
	assert.Equal(t, "kn-IN-Chirp3-HD-Kore", VoiceName("kn-IN"))
}
