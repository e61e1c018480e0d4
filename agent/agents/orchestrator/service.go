package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	nodex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/nodes"
	promptx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/prompt"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

var ErrInvalidQuery = nodex.ErrInvalidQuery

// Orchestrator routes free-text queries through the classify, dispatch,
// record pipeline and runs predefined multi-step workflows.
type Orchestrator struct {
	store     storex.Store
	agents    contractx.Registry
	completer contractx.Completer

	classifierParams llmx.ModelParams
	analyzerPrompt   string

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(
	st storex.Store,
	agents contractx.Registry,
	completer contractx.Completer,
	cfg llmx.Config,
	prompts promptx.PromptSet,
) (*Orchestrator, error) {
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if agents == nil {
		return nil, errors.New("agent registry is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompts.Analyzer) == "" {
		return nil, fmt.Errorf("%w: analyzer system prompt", contractx.ErrPromptMissing)
	}

	o := &Orchestrator{
		store:            st,
		agents:           agents,
		completer:        completer,
		classifierParams: cfg.ParamsFor(llmx.RoleClassifier),
		analyzerPrompt:   prompts.Analyzer,
	}

	graphRunner, err := o.compileProcessGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Process answers one free-text query. Handled agent failures come back
// inside the envelope; an error return means the query never reached an
// agent.
func (o *Orchestrator) Process(ctx context.Context, text string) (contractx.Envelope, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Text: text})
	if err != nil {
		return contractx.Envelope{}, err
	}
	return out.Envelope, nil
}
