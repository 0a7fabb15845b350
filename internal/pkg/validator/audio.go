package validator

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
)

// DecodeAudio accepts plain base64 and data URLs (data:audio/webm;base64,...).
func DecodeAudio(audioData string) ([]byte, error) {
	data := strings.TrimSpace(audioData)
	if data == "" {
		return nil, fmt.Errorf("%w: no audio provided", entity.ErrInvalidInput)
	}
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	audio, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: audio is not valid base64: %w", entity.ErrInvalidInput, err)
	}
	return audio, nil
}
