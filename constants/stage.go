package constants

// Stage names one step of the analysis pipeline. Logged as the "stage" attribute.
type Stage string

const (
	StageMetadata Stage = "metadata" // A: page count + document info
	StageContent  Stage = "content"  // B: page text + tables
	StageEntities Stage = "entities" // C: pattern matches
	StageSemantic Stage = "semantic" // D: classification
)
