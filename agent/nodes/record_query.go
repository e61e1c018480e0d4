package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

// RecordQuery writes the audit row for a processed chat query. Storage
// failures are logged and swallowed so auditing never breaks a reply.
func RecordQuery(ctx context.Context, in *GraphState, st storex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	// The qa agent stores its own richer audit row.
	if in.Agent == contractx.AgentTypeQA {
		return in, nil
	}

	entities := make(map[string]string)
	for _, key := range contractx.ParamKeys {
		if val, ok := in.Parameters.Value(key); ok && val != "" {
			entities[key] = val
		}
	}

	var response string
	if buf, err := json.Marshal(in.Result); err == nil {
		response = string(buf)
	}

	rec := storex.QueryRecord{
		QueryText:     in.Text,
		Entities:      entities,
		Intent:        string(in.Intent),
		Response:      response,
		AgentType:     string(in.Agent),
		CustomKeyword: in.Parameters.CustomKeyword,
	}
	if err := st.InsertQuery(ctx, &rec); err != nil {
		log.Warn().Err(err).Msg("skipping chat audit record that failed to store")
	}
	return in, nil
}
