package entity

type STTRequest struct {
	AudioData string `json:"audioData"`
}

type STTResponse struct {
	Text           string `json:"text"`
	Success        bool   `json:"success"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

type TTSRequest struct {
	Text string `json:"text"`
}

type TTSResponse struct {
	Success        bool   `json:"success"`
	Audio          string `json:"audio"`
	Format         string `json:"format"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

// Transcription is the outcome of a speech-to-text call.
type Transcription struct {
	Text           string
	ResponseTimeMs int64
}

// Synthesis is the outcome of a text-to-speech call.
type Synthesis struct {
	Audio          []byte
	Format         string
	ResponseTimeMs int64
}
