package agents

import (
	"fmt"

	"github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents/collector"
	"github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents/qa"
	"github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents/reporter"
	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	promptx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/prompt"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

type registryImpl struct {
	collector contractx.DataCollector
	reporter  contractx.ReportGenerator
	qa        contractx.QAAgent
}

func (r *registryImpl) DataCollector() contractx.DataCollector {
	return r.collector
}

func (r *registryImpl) ReportGenerator() contractx.ReportGenerator {
	return r.reporter
}

func (r *registryImpl) QA() contractx.QAAgent {
	return r.qa
}

// NewRegistry wires the three specialist agents against a shared
// completer and record store. Per-agent model parameters come from the
// role sections of the LLM config.
func NewRegistry(completer contractx.Completer, st storex.Store, cfg llmx.Config, prompts promptx.PromptSet) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	collectorSvc, err := collector.New(completer, st, cfg.ParamsFor(llmx.RoleCollector), prompts.Collector)
	if err != nil {
		return nil, fmt.Errorf("create data collector: %w", err)
	}

	reporterSvc, err := reporter.New(completer, st,
		cfg.ParamsFor(llmx.RoleReporter), cfg.ParamsFor(llmx.RoleSummarizer),
		prompts.Reporter, prompts.Summarizer)
	if err != nil {
		return nil, fmt.Errorf("create report generator: %w", err)
	}

	qaSvc, err := qa.New(completer, st, cfg.ParamsFor(llmx.RoleQA), prompts.QA)
	if err != nil {
		return nil, fmt.Errorf("create qa agent: %w", err)
	}

	return &registryImpl{
		collector: collectorSvc,
		reporter:  reporterSvc,
		qa:        qaSvc,
	}, nil
}
