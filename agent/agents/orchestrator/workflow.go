package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	nodex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/nodes"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

// ExecuteWorkflow runs the steps in order against a shared context.
// Context values fill parameters a step left empty, and keys named in
// update_context are copied back after the step so later steps see
// them. A failed or unknown step records its error and execution moves
// on to the next step.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, wf contractx.Workflow) (*contractx.WorkflowResult, error) {
	wfContext := make(map[string]string, len(wf.Context))
	maps.Copy(wfContext, wf.Context)

	results := make([]contractx.StepOutcome, 0, len(wf.Steps))
	for i, step := range wf.Steps {
		params := step.Parameters.FillFrom(wfContext)
		log.Info().Int("step", i+1).Str("agent", string(step.Agent)).Msg("executing workflow step")

		result, err := nodex.Invoke(ctx, o.agents, step.Agent, params)
		if err != nil {
			log.Warn().Err(err).Int("step", i+1).Str("agent", string(step.Agent)).Msg("workflow step failed")
			results = append(results, contractx.StepOutcome{
				Agent:      step.Agent,
				Parameters: params,
				Err:        &contractx.StepError{Agent: step.Agent, Message: err.Error()},
			})
			continue
		}

		results = append(results, contractx.StepOutcome{
			Agent:      step.Agent,
			Parameters: params,
			Result:     result,
		})

		for _, key := range step.UpdateContext {
			if val, ok := params.Value(key); ok && val != "" {
				wfContext[key] = val
			}
		}
	}

	out := &contractx.WorkflowResult{Results: results, FinalContext: wfContext}
	o.recordWorkflow(ctx, wf, out)
	return out, nil
}

func (o *Orchestrator) recordWorkflow(ctx context.Context, wf contractx.Workflow, out *contractx.WorkflowResult) {
	failed := 0
	for _, r := range out.Results {
		if r.Err != nil {
			failed++
		}
	}

	var response string
	if buf, err := json.Marshal(out); err == nil {
		response = string(buf)
	}

	rec := storex.QueryRecord{
		QueryText: fmt.Sprintf("workflow execution with %d steps", len(wf.Steps)),
		Entities:  out.FinalContext,
		Intent:    "workflow_execution",
		Response:  response,
		AgentType: string(contractx.AgentTypeWorkflowBuilder),
	}
	if err := o.store.InsertQuery(ctx, &rec); err != nil {
		log.Warn().Err(err).Msg("skipping workflow audit record that failed to store")
		return
	}

	log.Info().Int("steps", len(wf.Steps)).Int("failed", failed).Msg("workflow executed")
}
