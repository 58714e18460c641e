package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

// MediaApology is the degraded response when an attachment could not be
// understood. The pipeline continues; the activity node is skipped.
const MediaApology = "I couldn't understand that, please try again."

const imageDescribeSystem = `Look at the student's photo and write ONE first-person
sentence describing the activity it shows, as the student would say it,
past tense. Example: "I built a birdhouse out of scrap wood." If visible
text is provided, use it as extra context.`

const voiceCleanSystem = `Rewrite the raw voice transcript below as a clean
first-person activity statement, past tense, keeping the student's meaning.
Return only the rewritten sentence.`

// PrepareImage turns an attached photo into a first-person activity
// statement substituted as the new prompt. Failure degrades to an apology
// instead of propagating.
func PrepareImage(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	if strings.TrimSpace(st.ImageURL) == "" && len(st.ImageBytes) == 0 {
		return degradeMedia(st), nil
	}

	// OCR raw bytes when we have them; visible text (worksheet headings,
	// labels) sharpens the description.
	ocrText := ""
	if len(st.ImageBytes) > 0 && deps.Vision != nil {
		if text, err := deps.Vision.OCRImageBytes(ctx, st.ImageBytes); err == nil {
			ocrText = text
		} else {
			deps.Log.Warn("Image OCR failed, continuing without it", "user_id", st.UserID, "error", err)
		}
	}

	var desc string
	var err error
	if strings.TrimSpace(st.ImageURL) != "" {
		user := "Describe the activity in this photo."
		if ocrText != "" {
			user = fmt.Sprintf("Visible text in the photo: %q\n%s", ocrText, user)
		}
		desc, err = deps.AI.GenerateTextWithImage(ctx, imageDescribeSystem, user, st.ImageURL)
	} else if ocrText != "" {
		desc, err = deps.AI.GenerateText(ctx, imageDescribeSystem,
			fmt.Sprintf("No photo available, only its visible text: %q", ocrText))
	}

	if err != nil || strings.TrimSpace(desc) == "" {
		deps.Log.Warn("Image analysis failed, degrading", "user_id", st.UserID, "error", err)
		return degradeMedia(st), nil
	}

	st.Prompt = strings.TrimSpace(desc)
	return st, nil
}

// PrepareVoice transcribes an attached voice note and cleans it into a
// first-person activity statement substituted as the new prompt.
func PrepareVoice(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	if len(st.AudioBytes) == 0 || deps.Speech == nil {
		return degradeMedia(st), nil
	}

	transcript, err := deps.Speech.TranscribeAudioBytes(ctx, st.AudioBytes, st.AudioMIME)
	if err != nil || strings.TrimSpace(transcript) == "" {
		deps.Log.Warn("Voice transcription failed, degrading", "user_id", st.UserID, "error", err)
		return degradeMedia(st), nil
	}

	cleaned, err := deps.AI.GenerateText(ctx, voiceCleanSystem, transcript)
	if err != nil || strings.TrimSpace(cleaned) == "" {
		// The raw transcript is still usable.
		cleaned = transcript
	}

	st.Prompt = strings.TrimSpace(cleaned)
	return st, nil
}

func degradeMedia(st types.PipelineState) types.PipelineState {
	st.MediaFailed = true
	st.ResponseText = MediaApology
	return st
}
