package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/yungbote/mentorloop-backend/internal/logger"
)

// VisionProvider extracts visible text from images attached to chat messages
// (worksheets, whiteboards, project photos with labels).
type VisionProvider interface {
	OCRImageBytes(ctx context.Context, img []byte) (string, error)
	Close() error
}

type visionProvider struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewVisionProvider(baseLog *logger.Logger) (VisionProvider, error) {
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

	return &visionProvider{
		log:    baseLog.With("service", "VisionProvider"),
		client: c,
	}, nil
}

func (s *visionProvider) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *visionProvider) OCRImageBytes(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	return documentTextFromResponse(resp)
}

func documentTextFromResponse(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return collapseWhitespace(r0.FullTextAnnotation.Text), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
