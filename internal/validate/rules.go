// Package validate holds the per-capability request rules. All checks are
// pure: they accept a payload, return a Rejection or nil, and never touch
// session state.
package validate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/cleoai/cleo/internal/domain"
)

// Rejection is a structured validation failure: a status classification
// plus a user-facing message.
type Rejection struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%d: %s", r.Status, r.Message)
}

// Limits are the configurable size ceilings the rules enforce.
type Limits struct {
	PromptMax      int      // send-message / text-to-speech text length
	ImagePromptMax int      // generate-image prompt length
	AssetMaxBytes  int64    // decoded inline asset size
	AssetMIMETypes []string // allow-listed asset media types
}

// DefaultLimits returns the stock limits: 150-char prompts, 100-char image
// prompts, 512 KiB PNG/JPEG assets.
func DefaultLimits() Limits {
	return Limits{
		PromptMax:      150,
		ImagePromptMax: 100,
		AssetMaxBytes:  512 << 10,
		AssetMIMETypes: []string{"image/png", "image/jpeg"},
	}
}

var check = validator.New(validator.WithRequiredStructEnabled())

// TextPrompt validates a send-message payload: prompt required and within
// the limit, optional asset reference well-formed.
func TextPrompt(prompt, assetRef string, lim Limits) *Rejection {
	if rej := promptVar(prompt, lim.PromptMax); rej != nil {
		return rej
	}
	if assetRef != "" {
		return AssetReference(assetRef, lim)
	}
	return nil
}

// ImagePrompt validates a generate-image payload.
func ImagePrompt(prompt string, lim Limits) *Rejection {
	return promptVar(prompt, lim.ImagePromptMax)
}

// SpeechText resolves the text for speech synthesis. Explicit text wins;
// when absent, the last history entry must carry non-empty textual content.
func SpeechText(text string, last *domain.HistoryEntry, lim Limits) (string, *Rejection) {
	if text == "" {
		if last == nil || !last.HasText() {
			return "", &Rejection{Status: http.StatusBadRequest, Message: "Text is required"}
		}
		return last.Message.Text, nil
	}
	if err := check.Var(text, fmt.Sprintf("max=%d", lim.PromptMax)); err != nil {
		return "", &Rejection{Status: http.StatusBadRequest, Message: "Text is too large"}
	}
	return text, nil
}

// AssetReference validates an asset reference attached to a prompt: either
// an http(s) URL or a data: URL whose decoded bytes pass ImageBytes.
func AssetReference(ref string, lim Limits) *Rejection {
	if strings.HasPrefix(ref, "data:") {
		data, rej := decodeDataURL(ref)
		if rej != nil {
			return rej
		}
		_, rej = ImageBytes(data, lim)
		return rej
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &Rejection{Status: http.StatusBadRequest, Message: "Invalid asset reference"}
	}
	return nil
}

// ImageBytes checks raw image bytes against the size ceiling and the MIME
// allow-list, sniffing the actual content rather than trusting headers.
// On success it returns the detected media type.
func ImageBytes(data []byte, lim Limits) (string, *Rejection) {
	if len(data) == 0 {
		return "", &Rejection{Status: http.StatusBadRequest, Message: "File is required"}
	}
	if int64(len(data)) > lim.AssetMaxBytes {
		return "", &Rejection{Status: http.StatusBadRequest, Message: "File is too large"}
	}

	mt := mimetype.Detect(data)
	for _, allowed := range lim.AssetMIMETypes {
		if mt.Is(allowed) {
			return mt.String(), nil
		}
	}
	return "", &Rejection{Status: http.StatusUnsupportedMediaType, Message: "File is not allowed"}
}

// promptVar runs the shared required+max rule and maps validator errors to
// user-facing rejections.
func promptVar(prompt string, max int) *Rejection {
	err := check.Var(prompt, fmt.Sprintf("required,max=%d", max))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return &Rejection{Status: http.StatusBadRequest, Message: "Prompt is too large"}
	}
	return &Rejection{Status: http.StatusBadRequest, Message: "Prompt is required"}
}

// decodeDataURL extracts the payload of a base64 data: URL.
func decodeDataURL(ref string) ([]byte, *Rejection) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, &Rejection{Status: http.StatusBadRequest, Message: "Invalid asset reference"}
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &Rejection{Status: http.StatusBadRequest, Message: "Invalid asset reference"}
	}
	return data, nil
}
