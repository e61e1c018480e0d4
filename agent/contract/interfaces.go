package contract

import "context"

// Completer is the text completion boundary. Implementations must not
// leak provider-specific behavior beyond generated text or an error.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type DataCollector interface {
	Collect(ctx context.Context, req DataCollectionRequest) (*CollectionResult, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, req ReportRequest) (*ReportResult, error)
}

type QAAgent interface {
	Answer(ctx context.Context, req QARequest) (*AnswerResult, error)
}

type Registry interface {
	DataCollector() DataCollector
	ReportGenerator() ReportGenerator
	QA() QAAgent
}
