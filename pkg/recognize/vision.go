package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/readlens/readlens/internal/httpc"
)

const engineVision = "vision"

// visionPrompt asks the model for a bare transcription so the response can be
// split into lines without post-processing.
const visionPrompt = "Transcribe all printed text visible in this image. " +
	"Return only the text, one line per printed line. " +
	"If there is no readable text, return an empty response."

// Vision implements Engine against any OpenAI-compatible chat completions API
// with image input (OpenAI, Ollama, vLLM, etc.).
type Vision struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewVision creates a new remote vision recognition engine.
func NewVision(opts ...Option) (*Vision, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.ValidateRemote(); err != nil {
		return nil, err
	}

	return &Vision{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "recognize.vision"),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// Recognize sends the image to the vision model and splits the reply into lines.
func (v *Vision) Recognize(ctx context.Context, jpeg []byte) (Outcome, error) {
	payload := map[string]interface{}{
		"model": v.config.Model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": visionPrompt},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{}, WrapError(engineVision, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Outcome{}, WrapError(engineVision, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.config.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return Outcome{}, WrapError(engineVision, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Outcome{}, v.parseError(resp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Outcome{}, WrapError(engineVision, fmt.Errorf("decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return Outcome{}, WrapError(engineVision, fmt.Errorf("no choices returned"))
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return Outcome{}, nil
	}

	return Outcome{Lines: SplitLines(content)}, nil
}

func (v *Vision) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Engine:     engineVision,
	}
}

// Name returns "vision".
func (v *Vision) Name() string {
	return engineVision
}

// Close releases resources.
func (v *Vision) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

// Verify Vision implements Engine at compile time.
var _ Engine = (*Vision)(nil)
