//nolint:revive // types is a standard Go package name pattern
package types

// SkillGapRequest asks for a comparison of a resume against a job description.
type SkillGapRequest struct {
	Resume         string `json:"resume" validate:"required,max=50000"`
	JobDescription string `json:"jobDescription" validate:"required,max=50000"`
}

// ResumeOptimizationRequest asks for ATS-oriented rewrite suggestions.
type ResumeOptimizationRequest struct {
	Resume         string  `json:"resume" validate:"required,max=50000"`
	JobDescription string  `json:"jobDescription" validate:"required,max=50000"`
	Template       *string `json:"template" validate:"omitempty,oneof=professional modern minimal"`
}

// CoverLetterRequest asks for a tailored cover letter.
type CoverLetterRequest struct {
	Resume         string  `json:"resume" validate:"required,max=50000"`
	JobDescription string  `json:"jobDescription" validate:"required,max=50000"`
	CompanyName    string  `json:"companyName" validate:"required,max=200"`
	RoleTitle      string  `json:"roleTitle" validate:"required,max=200"`
	Tone           *string `json:"tone" validate:"omitempty,oneof=professional enthusiastic concise"`
}

// InterviewQuestionsRequest asks for likely interview questions for a role.
type InterviewQuestionsRequest struct {
	JobDescription string  `json:"jobDescription" validate:"required,max=50000"`
	RoleTitle      string  `json:"roleTitle" validate:"required,max=200"`
	Resume         *string `json:"resume" validate:"omitempty,max=50000"`
}

// ApplicationInsightRequest asks for advice on a tracked job application.
type ApplicationInsightRequest struct {
	Company     string  `json:"company" validate:"required,max=200"`
	Position    string  `json:"position" validate:"required,max=200"`
	Status      string  `json:"status" validate:"required,oneof=wishlist applied interviewing offer rejected withdrawn"`
	Notes       *string `json:"notes" validate:"omitempty,max=50000"`
	AppliedDate *string `json:"appliedDate" validate:"omitempty,datetime=2006-01-02"`
}

// NetworkingTipRequest asks for advice on following up with a contact.
type NetworkingTipRequest struct {
	ContactName     string  `json:"contactName" validate:"required,max=200"`
	Company         *string `json:"company" validate:"omitempty,max=200"`
	Role            *string `json:"role" validate:"omitempty,max=200"`
	InteractionType string  `json:"interactionType" validate:"required,oneof=email linkedin call meeting coffee event other"`
	Notes           *string `json:"notes" validate:"omitempty,max=50000"`
}

// NewRequest returns a pointer to an empty request value for the use case, or nil if unknown.
func NewRequest(uc UseCase) any {
	switch uc {
	case UseCaseSkillGap:
		return &SkillGapRequest{}
	case UseCaseResumeOptimization:
		return &ResumeOptimizationRequest{}
	case UseCaseCoverLetter:
		return &CoverLetterRequest{}
	case UseCaseInterviewQuestions:
		return &InterviewQuestionsRequest{}
	case UseCaseApplicationInsight:
		return &ApplicationInsightRequest{}
	case UseCaseNetworkingTip:
		return &NetworkingTipRequest{}
	default:
		return nil
	}
}
