package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
}

// Validator validates request payloads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// MaxFileSize is the largest accepted document in bytes.
func (v *Validator) MaxFileSize() int64 {
	return v.cfg.MaxFileSize
}

// ValidateDocument checks an uploaded document before it is stored.
func (v *Validator) ValidateDocument(req *entity.UploadDocumentRequest) error {
	if req == nil || len(req.Content) == 0 {
		return entity.ErrNoFile
	}

	if int64(len(req.Content)) > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrPayloadTooLarge, req.Filename, len(req.Content), v.cfg.MaxFileSize)
	}

	if strings.TrimSpace(req.Filename) == "" {
		return fmt.Errorf("%w: filename", entity.ErrInvalidInput)
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %s (allowed: txt, md, docx)", entity.ErrInvalidExtension, ext)
	}

	return nil
}

// ValidateAudio checks decoded audio before it is sent to a speech provider.
func (v *Validator) ValidateAudio(audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: audio data is empty", entity.ErrInvalidInput)
	}
	if int64(len(audio)) > v.cfg.MaxAudioSize {
		return fmt.Errorf("%w: audio is %d bytes (max %d)", entity.ErrPayloadTooLarge, len(audio), v.cfg.MaxAudioSize)
	}
	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
		"/", "",
		"\\", "",
	)
	return replacer.Replace(filename)
}
