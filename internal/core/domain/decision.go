package domain

type Stage string

const (
	StageFilenameIntent    Stage = "filename_intent"
	StageKeywordScore      Stage = "keyword_score"
	StageExtensionNoText   Stage = "extension_no_text"
	StageGenerative        Stage = "generative"
	StageExtensionFallback Stage = "extension_fallback"
)

// GenerativeFailure is the typed reason the generative fallback was not used.
type GenerativeFailure string

const (
	GenerativeOK           GenerativeFailure = ""
	GenerativeUnavailable  GenerativeFailure = "unavailable"
	GenerativeCallFailed   GenerativeFailure = "call_failed"
	GenerativeUnrecognized GenerativeFailure = "unrecognized_label"
)

type CategoryScore struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// Decision is the outcome of the classification cascade. Category is never empty.
type Decision struct {
	Category          Category          `json:"category"`
	Stage             Stage             `json:"stage"`
	Scores            []CategoryScore   `json:"scores,omitempty"`
	GenerativeFailure GenerativeFailure `json:"generative_failure,omitempty"`
}
