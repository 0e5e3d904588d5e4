// Package textrec - Text recognition predictor.
//
// The predictor loads the post-processing side-car of a recognition model,
// prepares OCR line images, runs them through an inference engine and decodes
// the CTC probability sequences into text.
package textrec

import "github.com/nvr-ai/go-textrec/transforms"

// Batch item keys used by the text recognition predictor.
const (
	// KeyImage holds the decoded, and after pre-processing normalized, image.
	KeyImage = transforms.KeyImage
	// KeyInputPath holds the path of an image to decode.
	KeyInputPath = transforms.KeyInputPath
	// KeyOriginalSize holds the decoded image size as []int{width, height}.
	KeyOriginalSize = transforms.KeyOriginalSize
	// KeyRecProbs holds the (1, T, C) class probability tensor.
	KeyRecProbs = "rec_probs"
	// KeyRecText holds the decoded text.
	KeyRecText = "rec_text"
	// KeyRecScore holds the mean confidence of the decoded characters.
	KeyRecScore = "rec_score"
)

// SupportModels lists the recognition models served by this predictor.
var SupportModels = []string{
	"PP-OCRv4_mobile_rec",
	"PP-OCRv4_server_rec",
	"PP-OCRv3_mobile_rec",
	"ch_SVTRv2_rec",
	"ch_RepSVTR_rec",
}

// IsSupported reports whether name is one of SupportModels.
func IsSupported(name string) bool {
	for _, m := range SupportModels {
		if m == name {
			return true
		}
	}
	return false
}
