package handlers

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"
)

const downloadTimeout = 30 * time.Second

var (
	errVoiceTooLarge = errors.New("voice file too large")
	errVoiceDownload = errors.New("voice download failed")
)

var secureHTTPClient = &http.Client{
	Timeout: downloadTimeout,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// voiceLoader fetches voice notes and, when an ffmpeg binary is configured,
// converts them to 16 kHz mono WAV for the speech providers.
type voiceLoader struct {
	api        BotAPI
	client     *http.Client
	maxSize    int64
	ffmpegPath string
}

func (l *voiceLoader) load(ctx context.Context, voice *VoiceFile) ([]byte, error) {
	if voice.FileSize > l.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errVoiceTooLarge, voice.FileSize, l.maxSize)
	}

	fileURL, err := l.api.GetFileDirectURL(voice.FileID)
	if err != nil {
		return nil, fmt.Errorf("%w: get file url: %w", errVoiceDownload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", errVoiceDownload, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errVoiceDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", errVoiceDownload, resp.StatusCode)
	}

	// FileSize is optional in updates, so cap the body as well.
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", errVoiceDownload, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", errVoiceTooLarge, l.maxSize)
	}

	if l.ffmpegPath == "" {
		return data, nil
	}
	return convertToWav(ctx, l.ffmpegPath, data)
}

// convertToWav pipes audio (OGG/Opus from Telegram) through
// ffmpeg -i pipe:0 -f wav -ar 16000 -ac 1 pipe:1.
func convertToWav(ctx context.Context, ffmpegPath string, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "wav",
		"-ar", "16000",
		"-ac", "1",
		"pipe:1",
	)

	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("ffmpeg convert to wav: %w, stderr: %s", err, stderr.String())
		}
		return nil, fmt.Errorf("ffmpeg convert to wav: %w", err)
	}

	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg convert to wav: empty output")
	}
	return stdout.Bytes(), nil
}
