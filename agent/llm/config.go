package llm

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

// Role selects which per-agent model settings a completion uses.
type Role string

const (
	RoleClassifier Role = "classifier"
	RoleCollector  Role = "collector"
	RoleReporter   Role = "reporter"
	RoleSummarizer Role = "summarizer"
	RoleQA         Role = "qa"
)

type Config struct {
	Model       string  `envconfig:"MODEL" split_words:"true" default:"gpt-4o"`
	Temperature float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"2000"`

	ClassifierModel       string  `envconfig:"CLASSIFIER_MODEL" split_words:"true" default:"gpt-4o-mini"`
	ClassifierTemperature float64 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"0.2"`
	ClassifierMaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" split_words:"true" default:"1000"`

	CollectorModel       string  `envconfig:"COLLECTOR_MODEL" split_words:"true" default:"gpt-4o"`
	CollectorTemperature float64 `envconfig:"COLLECTOR_TEMPERATURE" split_words:"true" default:"0.2"`
	CollectorMaxTokens   int     `envconfig:"COLLECTOR_MAX_TOKENS" split_words:"true" default:"2000"`

	ReporterModel       string  `envconfig:"REPORTER_MODEL" split_words:"true" default:"gpt-4o"`
	ReporterTemperature float64 `envconfig:"REPORTER_TEMPERATURE" split_words:"true" default:"0.5"`
	ReporterMaxTokens   int     `envconfig:"REPORTER_MAX_TOKENS" split_words:"true" default:"4000"`

	SummarizerModel       string  `envconfig:"SUMMARIZER_MODEL" split_words:"true" default:"gpt-4o-mini"`
	SummarizerTemperature float64 `envconfig:"SUMMARIZER_TEMPERATURE" split_words:"true" default:"0.5"`
	SummarizerMaxTokens   int     `envconfig:"SUMMARIZER_MAX_TOKENS" split_words:"true" default:"1000"`

	QAModel       string  `envconfig:"QA_MODEL" split_words:"true" default:"gpt-4o"`
	QATemperature float64 `envconfig:"QA_TEMPERATURE" split_words:"true" default:"0.3"`
	QAMaxTokens   int     `envconfig:"QA_MAX_TOKENS" split_words:"true" default:"2000"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// ModelParams is the execution half of a completion request. Each agent
// pairs its prompt messages with the params for its role.
type ModelParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewRequest pairs the params with a system and user message.
func (p ModelParams) NewRequest(system, user string) contractx.CompletionRequest {
	return contractx.CompletionRequest{
		Messages: []contractx.Message{
			{Role: contractx.RoleSystem, Content: system},
			{Role: contractx.RoleUser, Content: user},
		},
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

func (c Config) ParamsFor(role Role) ModelParams {
	switch role {
	case RoleClassifier:
		return c.params(c.ClassifierModel, c.ClassifierTemperature, c.ClassifierMaxTokens)
	case RoleCollector:
		return c.params(c.CollectorModel, c.CollectorTemperature, c.CollectorMaxTokens)
	case RoleReporter:
		return c.params(c.ReporterModel, c.ReporterTemperature, c.ReporterMaxTokens)
	case RoleSummarizer:
		return c.params(c.SummarizerModel, c.SummarizerTemperature, c.SummarizerMaxTokens)
	case RoleQA:
		return c.params(c.QAModel, c.QATemperature, c.QAMaxTokens)
	default:
		return c.params(c.Model, c.Temperature, c.MaxTokens)
	}
}

func (c Config) params(model string, temp float64, maxTokens int) ModelParams {
	m := strings.TrimSpace(model)
	if m == "" {
		m = strings.TrimSpace(c.Model)
	}
	if temp < 0 {
		temp = c.Temperature
	}
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	return ModelParams{Model: m, Temperature: temp, MaxTokens: maxTokens}
}
