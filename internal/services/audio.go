package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	"github.com/bitwiseee/superstudy-backend/internal/media"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

// maxTTSChars bounds the text sent to the synthesizer.
const maxTTSChars = 5000

// AudioService synthesizes speech for chats and manages the generated files
// under media/audio.
type AudioService interface {
	SynthesizeToFile(ctx context.Context, text, language, filename string) (string, error)
	DeleteAudio(relPath string)
	CleanupOldAudio(maxAge time.Duration) int
}

type audioService struct {
	tts             TTSClient
	store           *media.Store
	langs           *languages.Registry
	fallbackEnglish bool
	log             *logger.Logger
}

func NewAudioService(tts TTSClient, store *media.Store, langs *languages.Registry, baseLog *logger.Logger) AudioService {
	fallbackEnglish := utils.GetEnvAsBool("TTS_FALLBACK_ENGLISH", true, baseLog)
	return &audioService{
		tts:             tts,
		store:           store,
		langs:           langs,
		fallbackEnglish: fallbackEnglish,
		log:             baseLog.With("service", "AudioService"),
	}
}

// SynthesizeToFile voices the text in the language's registry voice and
// stores the result, returning the media-relative path. An empty filename
// gets a generated audio_<hex>.mp3 name.
func (s *audioService) SynthesizeToFile(ctx context.Context, text, language, filename string) (string, error) {
	voice, ok := s.langs.Voice(language)
	if !ok {
		if !s.fallbackEnglish {
			return "", fmt.Errorf("No voice available for language %q", language)
		}
		voice, _ = s.langs.Voice(s.langs.DefaultCode())
	}

	if len(text) > maxTTSChars {
		text = text[:maxTTSChars] + "..."
	}

	data, err := s.tts.Synthesize(ctx, text, voice)
	if err != nil {
		s.log.Error("Failed to synthesize audio", "language", language, "voice", voice, "error", err)
		return "", err
	}

	name := filename
	if name == "" {
		name = fmt.Sprintf("audio_%s.mp3", randomHex(6))
	}
	relPath, err := s.store.Save(media.SubdirAudio, name, data)
	if err != nil {
		s.log.Error("Failed to store audio file", "name", name, "error", err)
		return "", err
	}
	return relPath, nil
}

func (s *audioService) DeleteAudio(relPath string) {
	if relPath == "" {
		return
	}
	if err := s.store.Remove(relPath); err != nil {
		s.log.Warn("Failed to remove audio file", "path", relPath, "error", err)
	}
}

// CleanupOldAudio removes generated audio older than maxAge and reports how
// many files were deleted. Run once on startup.
func (s *audioService) CleanupOldAudio(maxAge time.Duration) int {
	dir := s.store.Dir(media.SubdirAudio)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("Failed to scan audio directory", "dir", dir, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			s.log.Warn("Failed to remove old audio file", "name", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("Cleaned up old audio files", "removed", removed)
	}
	return removed
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
