package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/analyzer.txt
	analyzerRaw string

	//go:embed template/collector.txt
	collectorRaw string

	//go:embed template/reporter.txt
	reporterRaw string

	//go:embed template/summarizer.txt
	summarizerRaw string

	//go:embed template/qa.txt
	qaRaw string
)

// PromptSet holds the system personas for every model-facing role.
type PromptSet struct {
	Analyzer   string
	Collector  string
	Reporter   string
	Summarizer string
	QA         string
}

// LoadPromptSet returns the embedded personas with surrounding
// whitespace trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Analyzer:   strings.TrimSpace(analyzerRaw),
		Collector:  strings.TrimSpace(collectorRaw),
		Reporter:   strings.TrimSpace(reporterRaw),
		Summarizer: strings.TrimSpace(summarizerRaw),
		QA:         strings.TrimSpace(qaRaw),
	}
}
