package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Recognition failure classes. Rate limiting is retry-appropriate after
// backoff; exhausted quota is not. Everything else surfaces as a wrapped
// generic upstream error.
var (
	ErrRecognitionRateLimited    = errors.New("recognition service rate limited")
	ErrRecognitionQuotaExhausted = errors.New("recognition credits exhausted")
	ErrRecognitionTimeout        = errors.New("recognition request timed out")
)

// The model answers with this sentinel when the image holds no readable text.
const unreadableSentinel = "UNREADABLE"

const defaultRecognitionTimeout = 25 * time.Second

const ocrSystemPrompt = `You are an expert Pashto OCR system specialized in reading handwritten Pashto text. Your task is to:

1. Carefully analyze the handwritten Pashto text in the image
2. Transcribe the text EXACTLY as written, preserving all characters
3. Return ONLY the transcribed Pashto text, nothing else
4. If you cannot read certain characters clearly, make your best educated guess based on context
5. If the image doesn't contain Pashto text or is unclear, respond with "UNREADABLE"

Important:
- Pashto uses a modified Arabic script with additional letters
- Pay attention to dots (nuqta) above and below letters
- Common Pashto-specific letters: ټ, ډ, ړ, ږ, ښ, ګ, ڼ, ۍ, ئ
- Preserve the exact spelling and word boundaries
- Do not add any explanations or commentary`

// RecognitionResult is the gateway's normalized reply: either a non-empty
// draft transcription or a human-readable failure message.
type RecognitionResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// RecognitionService forwards one image per call to an OpenAI-compatible
// vision-language endpoint and normalizes the reply. It never retries;
// callers decide whether a failure class is worth retrying.
type RecognitionService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewRecognitionService constructs a gateway client with a bounded wait on
// the upstream call.
func NewRecognitionService(baseURL, apiKey, model string, timeout time.Duration) *RecognitionService {
	if timeout <= 0 {
		timeout = defaultRecognitionTimeout
	}
	return &RecognitionService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Recognize sends the image (a data URI) upstream once and returns either a
// draft transcription or a structured failure. Malformed input yields a
// success=false result rather than an error.
func (s *RecognitionService) Recognize(ctx context.Context, image string) (RecognitionResult, error) {
	if strings.TrimSpace(image) == "" {
		return RecognitionResult{
			Success: false,
			Text:    "",
			Message: "No image provided",
		}, nil
	}

	payload := chatCompletionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: ocrSystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Please read and transcribe the handwritten Pashto text in this image. Return only the transcribed text."},
				{Type: "image_url", ImageURL: &imageURL{URL: image}},
			}},
		},
		MaxTokens:   500,
		Temperature: 0.1,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return RecognitionResult{}, fmt.Errorf("encode recognition request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return RecognitionResult{}, fmt.Errorf("build recognition request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return RecognitionResult{}, ErrRecognitionTimeout
		}
		return RecognitionResult{}, fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return RecognitionResult{}, ErrRecognitionRateLimited
		case http.StatusPaymentRequired:
			return RecognitionResult{}, ErrRecognitionQuotaExhausted
		}
		return RecognitionResult{}, fmt.Errorf("recognition upstream error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return RecognitionResult{}, fmt.Errorf("decode recognition response: %w", err)
	}

	text := ""
	if len(completion.Choices) > 0 {
		text = strings.TrimSpace(completion.Choices[0].Message.Content)
	}

	// An unreadable sentinel and an empty completion mean the same thing.
	if text == "" || text == unreadableSentinel {
		return RecognitionResult{
			Success: false,
			Text:    "",
			Message: "Could not read the text in the image. Please ensure the handwriting is clear and try again.",
		}, nil
	}

	return RecognitionResult{
		Success: true,
		Text:    text,
		Message: "Text recognized successfully",
	}, nil
}
