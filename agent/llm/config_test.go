package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

func defaultsConfig() Config {
	return Config{
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   2000,

		ClassifierModel:       "gpt-4o-mini",
		ClassifierTemperature: 0.2,
		ClassifierMaxTokens:   1000,
		CollectorModel:        "gpt-4o",
		CollectorTemperature:  0.2,
		CollectorMaxTokens:    2000,
		ReporterModel:         "gpt-4o",
		ReporterTemperature:   0.5,
		ReporterMaxTokens:     4000,
		SummarizerModel:       "gpt-4o-mini",
		SummarizerTemperature: 0.5,
		SummarizerMaxTokens:   1000,
		QAModel:               "gpt-4o",
		QATemperature:         0.3,
		QAMaxTokens:           2000,
	}
}

func TestParamsForRoles(t *testing.T) {
	t.Parallel()

	cfg := defaultsConfig()

	cases := []struct {
		role Role
		want ModelParams
	}{
		{role: RoleClassifier, want: ModelParams{Model: "gpt-4o-mini", Temperature: 0.2, MaxTokens: 1000}},
		{role: RoleCollector, want: ModelParams{Model: "gpt-4o", Temperature: 0.2, MaxTokens: 2000}},
		{role: RoleReporter, want: ModelParams{Model: "gpt-4o", Temperature: 0.5, MaxTokens: 4000}},
		{role: RoleSummarizer, want: ModelParams{Model: "gpt-4o-mini", Temperature: 0.5, MaxTokens: 1000}},
		{role: RoleQA, want: ModelParams{Model: "gpt-4o", Temperature: 0.3, MaxTokens: 2000}},
		{role: Role("unknown"), want: ModelParams{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 2000}},
	}

	for _, tc := range cases {
		if got := cfg.ParamsFor(tc.role); got != tc.want {
			t.Fatalf("ParamsFor(%q) = %+v, want %+v", tc.role, got, tc.want)
		}
	}
}

func TestParamsForFallsBackToBaseModel(t *testing.T) {
	t.Parallel()

	cfg := defaultsConfig()
	cfg.ReporterModel = "   "
	cfg.ReporterMaxTokens = 0

	got := cfg.ParamsFor(RoleReporter)
	if got.Model != "gpt-4o" {
		t.Fatalf("ParamsFor(reporter).Model = %q, want base model", got.Model)
	}
	if got.MaxTokens != 2000 {
		t.Fatalf("ParamsFor(reporter).MaxTokens = %d, want base max tokens", got.MaxTokens)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultsConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg.Model = " "
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestNewRequestShape(t *testing.T) {
	t.Parallel()

	params := ModelParams{Model: "gpt-4o", Temperature: 0.3, MaxTokens: 500}
	req := params.NewRequest("system prompt", "user prompt")

	if req.Model != "gpt-4o" || req.Temperature != 0.3 || req.MaxTokens != 500 {
		t.Fatalf("NewRequest() params = %+v", req)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("NewRequest() produced %d messages, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != contractx.RoleSystem || req.Messages[1].Role != contractx.RoleUser {
		t.Fatalf("NewRequest() roles = %v, %v", req.Messages[0].Role, req.Messages[1].Role)
	}
}
