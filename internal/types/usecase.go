// Package types provides the request and result shapes exchanged with the AI adapter endpoints.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UseCase identifies one adapter endpoint and the request/result pair it handles.
type UseCase string

// Supported use cases
const (
	UseCaseSkillGap           UseCase = "skill-gap"
	UseCaseResumeOptimization UseCase = "resume-optimization"
	UseCaseCoverLetter        UseCase = "cover-letter"
	UseCaseInterviewQuestions UseCase = "interview-questions"
	UseCaseApplicationInsight UseCase = "application-insight"
	UseCaseNetworkingTip      UseCase = "networking-tip"
)

// AllUseCases lists every use case in endpoint registration order.
func AllUseCases() []UseCase {
	return []UseCase{
		UseCaseSkillGap,
		UseCaseResumeOptimization,
		UseCaseCoverLetter,
		UseCaseInterviewQuestions,
		UseCaseApplicationInsight,
		UseCaseNetworkingTip,
	}
}

// Valid reports whether u is a known use case.
func (u UseCase) Valid() bool {
	for _, known := range AllUseCases() {
		if u == known {
			return true
		}
	}
	return false
}

// Field length bounds shared by every request.
const (
	MaxTextLength  = 50000
	MaxTitleLength = 200
)
