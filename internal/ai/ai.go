package ai

// Evaluation is the scoring adapter's structured assessment of a finished
// interview. Sub-scores are 0-100 integers; qualitative lists may be empty.
type Evaluation struct {
	TechnicalScore  int
	ConfidenceScore int
	Strengths       []string
	Weaknesses      []string
	Summary         string
	Raw             string
}
