package gcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"google.golang.org/api/option"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
)

// VisionService extracts printed or handwritten text from a photographed
// exercise so it can enter the text pipeline.
type VisionService interface {
	ExtractImageText(ctx context.Context, image []byte) (string, error)
	Close() error
}

type visionService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVisionService(log *logger.Logger) (VisionService, error) {
	slog := log.With("service", "VisionService")

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	ctx := context.Background()
	var c *vision.ImageAnnotatorClient
	var err error
	if creds != "" {
		c, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(creds))
	} else {
		c, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &visionService{log: slog, client: c}, nil
}

func (v *visionService) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

func (v *visionService) ExtractImageText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image payload")
	}

	img, err := vision.NewImageFromReader(bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("vision decode: %w", err)
	}

	annotation, err := v.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return "", fmt.Errorf("vision detect: %w", err)
	}
	if annotation == nil || strings.TrimSpace(annotation.GetText()) == "" {
		return "", fmt.Errorf("no text found in image")
	}
	return strings.TrimSpace(annotation.GetText()), nil
}
