package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
)

const analyzeTemplate = `Analyze the following user query for a market intelligence system. Determine the user's intent and extract relevant parameters.

User Query: "%s"

Possible Intents:
- data_collection: User wants to find, research, or collect new/up-to-date data, facts, or outlooks about a market (e.g., 'Find data on...', 'Research the outlook for...', 'What is the latest market size for...?', 'Collect information about...'). This is for getting *new* information.
- report_generation: User wants a structured summary or generated report based on *existing, previously collected* data (e.g., 'Generate a report on...', 'Summarize the data for...', 'Create an overview of...'). This uses data already in the system.
- question_answering: User is asking a specific question about existing data or reports (e.g., 'What was the growth rate last year?', 'Who are the key players listed in the report?').

Parameters to Extract:
- sector (e.g., Technology, Healthcare, Video Game)
- country (e.g., France, US) - Optional
- financial_product (e.g., Leasing, Loan) - Optional
- custom_keyword (any specific term like 'market outlook 2025', 'electric vehicles', 'sustainability') - Optional
- question (if intent is question_answering)

Output ONLY a JSON object with 'intent' and 'parameters' keys. Examples:
{"intent": "report_generation", "parameters": {"sector": "Technology", "country": "Germany"}} # Generate report from existing data
{"intent": "question_answering", "parameters": {"question": "What is the growth rate for leasing in the French healthcare sector?"}} # Ask about existing data
{"intent": "data_collection", "parameters": {"sector": "Video Game", "custom_keyword": "market outlook 2025"}} # Research new info
{"intent": "data_collection", "parameters": {"sector": "Transportation", "country": "UK"}} # Collect new data`

type classification struct {
	Intent     contractx.Intent     `json:"intent"`
	Parameters contractx.Parameters `json:"parameters"`
}

// ClassifyIntent asks the model to label the query and pull out routing
// parameters. Analysis never hard-fails: any completion or parse error
// degrades to question answering over the raw query text.
func ClassifyIntent(
	ctx context.Context,
	in *GraphState,
	completer contractx.Completer,
	params llmx.ModelParams,
	systemPrompt string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	raw, err := completer.Complete(ctx, params.NewRequest(systemPrompt, fmt.Sprintf(analyzeTemplate, in.Text)))
	if err != nil {
		log.Warn().Err(err).Msg("query analysis failed, defaulting to question answering")
		return fallbackToQA(in), nil
	}

	var got classification
	if err := json.Unmarshal([]byte(llmx.StripFences(raw)), &got); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("query analysis returned malformed JSON, defaulting to question answering")
		return fallbackToQA(in), nil
	}

	in.Intent = got.Intent
	in.Parameters = got.Parameters
	return in, nil
}

func fallbackToQA(in *GraphState) *GraphState {
	in.Intent = contractx.IntentQuestionAnswering
	in.Parameters = contractx.Parameters{Question: in.Text}
	return in
}
