package entity

import "encoding/json"

// Metadata represents document-level facts read from the PDF catalog.
type Metadata struct {
	PageCount    int    `json:"pageCount"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	CreationDate string `json:"creationDate"`
	FileSizeKB   string `json:"fileSizeKB"`
}

// Table represents one detected table on one page.
type Table struct {
	Page       int        `json:"page"`
	TableIndex int        `json:"tableIndex"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
}

// Entity represents one pattern match in the extracted text.
type Entity struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
}

// SemanticAnalysis represents the coarse classification of the document text.
type SemanticAnalysis struct {
	DocumentType string   `json:"documentType"`
	Topics       []string `json:"topics"`
	Language     string   `json:"language"`
	Summary      string   `json:"summary"`
}

// AnalysisResult is the response of one analysis request.
// Only Success and Error are meaningful when Success is false.
type AnalysisResult struct {
	Success          bool             `json:"success"`
	Error            string           `json:"error,omitempty"`
	Metadata         Metadata         `json:"basicInfo"`
	RawText          string           `json:"rawText"`
	Tables           []Table          `json:"tables"`
	Entities         []Entity         `json:"entities"`
	SemanticAnalysis SemanticAnalysis `json:"semanticAnalysis"`
	ProcessingTime   string           `json:"processingTime"`
}

type failureResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResult struct {
	Success          bool             `json:"success"`
	Metadata         Metadata         `json:"basicInfo"`
	RawText          string           `json:"rawText"`
	Tables           []Table          `json:"tables"`
	Entities         []Entity         `json:"entities"`
	SemanticAnalysis SemanticAnalysis `json:"semanticAnalysis"`
	ProcessingTime   string           `json:"processingTime"`
}

// Failure builds the error-shaped result.
func Failure(message string) AnalysisResult {
	return AnalysisResult{Success: false, Error: message}
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureResult{Success: false, Error: r.Error})
	}

	out := successResult{
		Success:          true,
		Metadata:         r.Metadata,
		RawText:          r.RawText,
		Tables:           r.Tables,
		Entities:         r.Entities,
		SemanticAnalysis: r.SemanticAnalysis,
		ProcessingTime:   r.ProcessingTime,
	}
	if out.Tables == nil {
		out.Tables = []Table{}
	}
	for i := range out.Tables {
		if out.Tables[i].Headers == nil {
			out.Tables[i].Headers = []string{}
		}
		if out.Tables[i].Rows == nil {
			out.Tables[i].Rows = [][]string{}
		}
	}
	if out.Entities == nil {
		out.Entities = []Entity{}
	}
	if out.SemanticAnalysis.Topics == nil {
		out.SemanticAnalysis.Topics = []string{}
	}
	return json.Marshal(out)
}
