package orchestratornode

import (
	"errors"
	"strings"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

var ErrInvalidQuery = errors.New("query text is empty")

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	Envelope contractx.Envelope
}

type GraphState struct {
	Text string

	Intent     contractx.Intent
	Parameters contractx.Parameters
	Agent      contractx.AgentType

	Result any
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidQuery
	}

	return &GraphState{Text: text}, nil
}
