package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

// DispatchAgent routes the classified query to its specialist agent.
// Agent failures become an ErrorResult inside the graph state rather
// than aborting the run, so the caller always receives an envelope.
func DispatchAgent(ctx context.Context, in *GraphState, agents contractx.Registry) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	agent, ok := in.Intent.AgentFor()
	if !ok {
		log.Warn().Str("intent", string(in.Intent)).Msg("unclear intent, defaulting to question answering")
		in.Intent = contractx.IntentQuestionAnswering
		agent = contractx.AgentTypeQA
	}
	if agent == contractx.AgentTypeQA && strings.TrimSpace(in.Parameters.Question) == "" {
		in.Parameters.Question = in.Text
	}
	in.Agent = agent

	result, err := Invoke(ctx, agents, agent, in.Parameters)
	if err != nil {
		log.Warn().Err(err).Str("agent", string(agent)).Msg("agent returned an error result")
		in.Result = errorResult(err)
		return in, nil
	}
	in.Result = result
	return in, nil
}

// Invoke calls one agent with the typed request built from parameters.
// Workflow execution reuses it for every step.
func Invoke(ctx context.Context, agents contractx.Registry, agent contractx.AgentType, params contractx.Parameters) (any, error) {
	switch agent {
	case contractx.AgentTypeDataCollector:
		return agents.DataCollector().Collect(ctx, params.ToDataCollection())
	case contractx.AgentTypeReportGenerator:
		return agents.ReportGenerator().Generate(ctx, params.ToReport())
	case contractx.AgentTypeQA:
		return agents.QA().Answer(ctx, params.ToQA())
	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, agent)
	}
}

func errorResult(err error) contractx.ErrorResult {
	var malformed *contractx.MalformedOutputError
	if errors.As(err, &malformed) {
		return contractx.ErrorResult{Error: malformed.Error(), RawResponse: malformed.Raw}
	}
	return contractx.ErrorResult{Error: err.Error()}
}
