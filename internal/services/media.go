package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tutormind/tutormind-backend/internal/clients/gcp"
	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

// SpeechProvider and VisionProvider are the narrow views of the GCP clients
// the turn pipeline needs; tests substitute fakes.
type SpeechProvider interface {
	TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string, languageCode string) (string, error)
}

type VisionProvider interface {
	ExtractImageText(ctx context.Context, image []byte) (string, error)
}

// MediaService resolves a voice or photo reference to plain text before the
// turn pipeline runs.
type MediaService interface {
	ResolveAudio(ctx context.Context, audioRef string, mimeType string) (string, error)
	ResolvePhoto(ctx context.Context, photoRef string) (string, error)
}

type mediaService struct {
	log    *logger.Logger
	bucket gcp.BucketService
	speech SpeechProvider
	vision VisionProvider
}

func NewMediaService(bucket gcp.BucketService, speech SpeechProvider, vision VisionProvider, log *logger.Logger) MediaService {
	return &mediaService{
		log:    log.With("service", "MediaService"),
		bucket: bucket,
		speech: speech,
		vision: vision,
	}
}

func (s *mediaService) ResolveAudio(ctx context.Context, audioRef string, mimeType string) (string, error) {
	audioRef = strings.TrimSpace(audioRef)
	if audioRef == "" {
		return "", fmt.Errorf("missing audio ref")
	}
	if s.bucket == nil || s.speech == nil {
		return "", fmt.Errorf("voice input not configured")
	}
	audio, err := s.bucket.DownloadFile(ctx, audioRef)
	if err != nil {
		return "", fmt.Errorf("fetch audio %q: %w", audioRef, err)
	}
	text, err := s.speech.TranscribeAudioBytes(ctx, audio, mimeType, "")
	if err != nil {
		return "", fmt.Errorf("transcribe audio %q: %w", audioRef, err)
	}
	return text, nil
}

func (s *mediaService) ResolvePhoto(ctx context.Context, photoRef string) (string, error) {
	photoRef = strings.TrimSpace(photoRef)
	if photoRef == "" {
		return "", fmt.Errorf("missing photo ref")
	}
	if s.bucket == nil || s.vision == nil {
		return "", fmt.Errorf("photo input not configured")
	}
	image, err := s.bucket.DownloadFile(ctx, photoRef)
	if err != nil {
		return "", fmt.Errorf("fetch photo %q: %w", photoRef, err)
	}
	text, err := s.vision.ExtractImageText(ctx, image)
	if err != nil {
		return "", fmt.Errorf("read photo %q: %w", photoRef, err)
	}
	return text, nil
}
