package api

// CompletionRequest is the body of POST /v1/completions.
type CompletionRequest struct {
	Prompt  string `json:"prompt"`
	Samples int    `json:"samples,omitempty"`
}

// Completion is one generated sample, ordered by generation.
type Completion struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// CompletionResponse is the body returned for a completion request.
type CompletionResponse struct {
	ID          string       `json:"id"`
	Object      string       `json:"object"`
	Created     int64        `json:"created"`
	Model       string       `json:"model"`
	Completions []Completion `json:"completions"`
}

// ResponseError is the error payload shape shared by every failure response.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
