package services

import (
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
)

func TestDocumentTextFromResponse(t *testing.T) {
	got, err := documentTextFromResponse(nil)
	if err != nil || got != "" {
		t.Fatalf("nil response must yield empty text: %q, %v", got, err)
	}

	got, err = documentTextFromResponse(&visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{}},
	})
	if err != nil || got != "" {
		t.Fatalf("response without annotation must yield empty text: %q, %v", got, err)
	}

	got, err = documentTextFromResponse(&visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			FullTextAnnotation: &visionpb.TextAnnotation{
				Text: "Volcano  Project\n\nStep 1: baking soda",
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Volcano Project Step 1: baking soda" {
		t.Fatalf("annotation text not collapsed: %q", got)
	}
}
