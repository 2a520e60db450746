//nolint:revive // types is a standard Go package name pattern
package types

// SkillGapAnalysis is the parsed result of the skill-gap use case.
type SkillGapAnalysis struct {
	MatchScore      float64  `json:"matchScore"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

// ResumeOptimization is the parsed result of the resume-optimization use case.
type ResumeOptimization struct {
	ATSScore          float64         `json:"atsScore"`
	KeywordInsights   []string        `json:"keywordInsights"`
	SuggestedRewrites []BulletRewrite `json:"suggestedRewrites"`
	OverallFeedback   string          `json:"overallFeedback"`
}

// BulletRewrite is a single suggested resume line change.
type BulletRewrite struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
	Reason   string `json:"reason,omitempty"`
}

// CoverLetter is the parsed result of the cover-letter use case.
type CoverLetter struct {
	CoverLetter string   `json:"coverLetter"`
	Highlights  []string `json:"highlights"`
}

// InterviewQuestions is the parsed result of the interview-questions use case.
type InterviewQuestions struct {
	Questions []InterviewQuestion `json:"questions"`
}

// InterviewQuestion is one generated question with preparation guidance.
type InterviewQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Tip      string `json:"tip,omitempty"`
}

// ApplicationInsight is the parsed result of the application-insight use case.
type ApplicationInsight struct {
	Summary      string   `json:"summary"`
	NextSteps    []string `json:"nextSteps"`
	FollowUpDays int      `json:"followUpDays"`
}

// NetworkingTip is the parsed result of the networking-tip use case.
type NetworkingTip struct {
	Tips            []string `json:"tips"`
	FollowUpMessage string   `json:"followUpMessage"`
}

// NewResult returns a pointer to an empty result value for the use case, or nil if unknown.
func NewResult(uc UseCase) any {
	switch uc {
	case UseCaseSkillGap:
		return &SkillGapAnalysis{}
	case UseCaseResumeOptimization:
		return &ResumeOptimization{}
	case UseCaseCoverLetter:
		return &CoverLetter{}
	case UseCaseInterviewQuestions:
		return &InterviewQuestions{}
	case UseCaseApplicationInsight:
		return &ApplicationInsight{}
	case UseCaseNetworkingTip:
		return &NetworkingTip{}
	default:
		return nil
	}
}
