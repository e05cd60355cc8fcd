package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"captcha_solver/domain/entities"
	"captcha_solver/domain/interfaces"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// CaptchaInstruction is sent with every challenge image
const CaptchaInstruction = "Analyze the image to identify and extract the alphanumeric " +
	"characters present in the CAPTCHA. Ignore any background " +
	"elements, noise, or distortions. Return only the extracted " +
	"text, ensuring accuracy and clarity."

const defaultRequestTimeout = 60 * time.Second

// ClientConfig configures the vision model client
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

type OpenAIClient struct {
	client openai.Client
	model  string
	logger *logrus.Logger
}

// NewOpenAIClient - creates a client for an OpenAI-compatible vision model
func NewOpenAIClient(cfg ClientConfig, logger *logrus.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Transcribe - sends the instruction and image in one request and returns the trimmed reply
func (c *OpenAIClient) Transcribe(ctx context.Context, image entities.CaptchaImage) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("captcha image is empty")
	}

	c.logger.WithFields(logrus.Fields{
		"model": c.model,
		"bytes": len(image.Data),
	}).Info("Requesting transcription")

	completion, err := c.client.Chat.Completions.New(ctx, buildRequest(c.model, image))
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.logger.WithField("answer", text).Debug("Transcription received")
	return text, nil
}

// buildRequest - one user message carrying the instruction and the image
func buildRequest(model string, image entities.CaptchaImage) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(CaptchaInstruction),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: image.DataURL(),
				}),
			}),
		},
	}
}

var _ interfaces.Transcribable = (*OpenAIClient)(nil)
