package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

func FinalizeEnvelope(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Result == nil {
		return GraphOutput{}, fmt.Errorf("%w: no agent result was produced", contractx.ErrValidation)
	}

	return GraphOutput{Envelope: contractx.Envelope{
		Agent:      in.Agent,
		Parameters: in.Parameters,
		Result:     in.Result,
	}}, nil
}
