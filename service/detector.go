package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

const (
	defaultDetectorModel = "gemini-1.5-flash"
	maxRetries           = 3
	initialBackoff       = time.Second
	maxNoticeChars       = 30000
)

const detectInstruction = `You read Indian public works tender notices.
List every annexure, form or enclosure the notice asks bidders to submit.
Respond with JSON only, in the form {"annexures": ["<title>", ...]}.
Use the titles as written in the notice. Do not invent annexures.`

// GeminiDetector finds annexure titles in tender notices with a Gemini model
type GeminiDetector struct {
	client   *genai.Client
	model    string
	backoff  time.Duration
	generate func(ctx context.Context, prompt string) (string, error)
	logger   *zap.Logger
}

// DetectorOption is a functional option for GeminiDetector
type DetectorOption func(*GeminiDetector)

// DetectorWithModel sets the model name
func DetectorWithModel(name string) DetectorOption {
	return func(d *GeminiDetector) {
		if name != "" {
			d.model = name
		}
	}
}

// DetectorWithLogger sets the logger
func DetectorWithLogger(logger *zap.Logger) DetectorOption {
	return func(d *GeminiDetector) {
		d.logger = logger
	}
}

// NewGeminiDetector creates a detector backed by client
func NewGeminiDetector(client *genai.Client, opts ...DetectorOption) *GeminiDetector {
	d := &GeminiDetector{
		client:  client,
		model:   defaultDetectorModel,
		backoff: initialBackoff,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if client != nil {
		d.generate = d.callModel
	}
	return d
}

// DetectAnnexures asks the model for the annexure titles of noticeText,
// retrying transient failures with exponential backoff
func (d *GeminiDetector) DetectAnnexures(ctx context.Context, noticeText string) ([]string, error) {
	if d == nil || d.generate == nil {
		return nil, ErrDetectorUnavailable
	}

	notice := noticeText
	if len(notice) > maxNoticeChars {
		d.logger.Warn("notice too long, truncating",
			zap.Int("chars", len(notice)),
			zap.Int("limit", maxNoticeChars))
		notice = notice[:maxNoticeChars]
	}
	prompt := "Tender notice:\n\n" + notice

	var lastErr error
	backoff := d.backoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		text, err := d.generate(ctx, prompt)
		if err != nil {
			lastErr = err
			d.logger.Warn("annexure detection attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		titles, err := parseDetection(text)
		if err != nil {
			lastErr = err
			continue
		}
		return titles, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrDetectionFailed, maxRetries, lastErr)
}

func (d *GeminiDetector) callModel(ctx context.Context, prompt string) (string, error) {
	model := d.client.GenerativeModel(d.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(detectInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
		if out.Len() > 0 {
			break
		}
	}
	if out.Len() == 0 {
		return "", errors.New("model returned no text")
	}
	return out.String(), nil
}

// parseDetection reads the model's JSON answer. A markdown code fence
// around the JSON and a bare array are both accepted.
func parseDetection(text string) ([]string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var titles []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &titles); err != nil {
			return nil, fmt.Errorf("failed to decode detection: %w", err)
		}
	} else {
		var payload struct {
			Annexures []string `json:"annexures"`
		}
		if err := json.Unmarshal([]byte(s), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode detection: %w", err)
		}
		titles = payload.Annexures
	}

	out := make([]string, 0, len(titles))
	seen := make(map[string]bool, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out, nil
}
