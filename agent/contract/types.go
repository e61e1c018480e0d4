package contract

import (
	"strings"

	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

type AgentType string

const (
	AgentTypeOrchestrator    AgentType = "orchestrator"
	AgentTypeDataCollector   AgentType = "data_collector"
	AgentTypeReportGenerator AgentType = "report_generator"
	AgentTypeQA              AgentType = "qa_agent"

	// AgentTypeWorkflowBuilder labels workflow audit records. It is never
	// a dispatch target.
	AgentTypeWorkflowBuilder AgentType = "workflow_builder"
)

type Intent string

const (
	IntentDataCollection    Intent = "data_collection"
	IntentReportGeneration  Intent = "report_generation"
	IntentQuestionAnswering Intent = "question_answering"
)

// AgentFor maps an intent to the agent that handles it. Unknown intents
// report false so callers can fall back to question answering.
func (i Intent) AgentFor() (AgentType, bool) {
	switch i {
	case IntentDataCollection:
		return AgentTypeDataCollector, true
	case IntentReportGeneration:
		return AgentTypeReportGenerator, true
	case IntentQuestionAnswering:
		return AgentTypeQA, true
	default:
		return "", false
	}
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Parameters is the bag the classifier extracts from free text and the
// unit a workflow threads between steps.
type Parameters struct {
	Sector           string `json:"sector,omitempty"`
	Country          string `json:"country,omitempty"`
	FinancialProduct string `json:"financial_product,omitempty"`
	CustomKeyword    string `json:"custom_keyword,omitempty"`
	Question         string `json:"question,omitempty"`
}

const (
	ParamSector           = "sector"
	ParamCountry          = "country"
	ParamFinancialProduct = "financial_product"
	ParamCustomKeyword    = "custom_keyword"
	ParamQuestion         = "question"
)

// ParamKeys lists every context-mergeable parameter name.
var ParamKeys = []string{
	ParamSector,
	ParamCountry,
	ParamFinancialProduct,
	ParamCustomKeyword,
	ParamQuestion,
}

func (p Parameters) Value(key string) (string, bool) {
	switch key {
	case ParamSector:
		return p.Sector, true
	case ParamCountry:
		return p.Country, true
	case ParamFinancialProduct:
		return p.FinancialProduct, true
	case ParamCustomKeyword:
		return p.CustomKeyword, true
	case ParamQuestion:
		return p.Question, true
	default:
		return "", false
	}
}

func (p *Parameters) Set(key, value string) bool {
	switch key {
	case ParamSector:
		p.Sector = value
	case ParamCountry:
		p.Country = value
	case ParamFinancialProduct:
		p.FinancialProduct = value
	case ParamCustomKeyword:
		p.CustomKeyword = value
	case ParamQuestion:
		p.Question = value
	default:
		return false
	}
	return true
}

// FillFrom copies context values into parameters the step left empty.
// Explicitly given parameters are never overwritten.
func (p Parameters) FillFrom(context map[string]string) Parameters {
	for key, val := range context {
		if strings.TrimSpace(val) == "" {
			continue
		}
		if current, ok := p.Value(key); ok && strings.TrimSpace(current) == "" {
			p.Set(key, val)
		}
	}
	return p
}

func (p Parameters) ToDataCollection() DataCollectionRequest {
	return DataCollectionRequest{
		Sector:           p.Sector,
		Country:          p.Country,
		FinancialProduct: p.FinancialProduct,
		CustomKeyword:    p.CustomKeyword,
	}
}

func (p Parameters) ToReport() ReportRequest {
	return ReportRequest{
		Sector:           p.Sector,
		Country:          p.Country,
		FinancialProduct: p.FinancialProduct,
		CustomKeyword:    p.CustomKeyword,
	}
}

func (p Parameters) ToQA() QARequest {
	return QARequest{
		Question:         p.Question,
		Sector:           p.Sector,
		Country:          p.Country,
		FinancialProduct: p.FinancialProduct,
		CustomKeyword:    p.CustomKeyword,
	}
}

type DataCollectionRequest struct {
	Sector           string `json:"sector"`
	Country          string `json:"country,omitempty"`
	FinancialProduct string `json:"financial_product,omitempty"`
	CustomKeyword    string `json:"custom_keyword,omitempty"`
}

type ReportRequest struct {
	Sector           string `json:"sector"`
	Country          string `json:"country,omitempty"`
	FinancialProduct string `json:"financial_product,omitempty"`
	CustomKeyword    string `json:"custom_keyword,omitempty"`
}

type QARequest struct {
	Question         string `json:"question"`
	Sector           string `json:"sector,omitempty"`
	Country          string `json:"country,omitempty"`
	FinancialProduct string `json:"financial_product,omitempty"`
	CustomKeyword    string `json:"custom_keyword,omitempty"`
	ReportID         string `json:"report_id,omitempty"`
}

// Placeholder tags a result whose payload was fabricated after a
// completion failure. Records stored from such a result also carry
// metadata["synthetic"]="true".
type Placeholder struct {
	Reason string `json:"reason"`
}

type CollectionResult struct {
	Query       DataCollectionRequest    `json:"query"`
	Collected   []storex.MarketDataPoint `json:"collected_data"`
	Placeholder *Placeholder             `json:"placeholder,omitempty"`
}

type ReportPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

type ReportResult struct {
	Query        ReportRequest  `json:"query"`
	Report       ReportPayload  `json:"report"`
	StoredReport *storex.Report `json:"stored_report,omitempty"`
	Placeholder  *Placeholder   `json:"placeholder,omitempty"`
}

type ReportRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type AnswerResult struct {
	Query          QARequest           `json:"query"`
	Answer         string              `json:"answer"`
	ReportsUsed    []ReportRef         `json:"reports_used"`
	MarketDataUsed int                 `json:"market_data_used"`
	StoredQuery    *storex.QueryRecord `json:"stored_query,omitempty"`
}

// ErrorResult is the caller-visible form of any handled failure.
type ErrorResult struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response,omitempty"`
}

// Envelope is the one behavioral contract callers may rely on: every
// orchestrated outcome, success or failure, is wrapped in this shape.
type Envelope struct {
	Agent      AgentType  `json:"agent"`
	Parameters Parameters `json:"parameters"`
	Result     any        `json:"result"`
}

type WorkflowStep struct {
	Agent         AgentType  `json:"agent"`
	Parameters    Parameters `json:"parameters"`
	UpdateContext []string   `json:"update_context,omitempty"`
}

type Workflow struct {
	Steps   []WorkflowStep    `json:"steps"`
	Context map[string]string `json:"context,omitempty"`
}

type StepOutcome struct {
	Agent      AgentType  `json:"agent"`
	Parameters Parameters `json:"parameters"`
	Result     any        `json:"result,omitempty"`
	Err        *StepError `json:"error,omitempty"`
}

type WorkflowResult struct {
	Results      []StepOutcome     `json:"results"`
	FinalContext map[string]string `json:"final_context"`
}
