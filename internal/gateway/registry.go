package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/parsing"
	"github.com/jobcoach/jobcoach/internal/prompts"
	"github.com/jobcoach/jobcoach/internal/schemas"
	"github.com/jobcoach/jobcoach/internal/types"
)

// Definition binds a use case to everything needed to serve it.
type Definition struct {
	UseCase   types.UseCase
	ResultKey string
	Mode      parsing.Mode
	Format    llm.OutputFormat
	Schema    string
	// ToolName and ToolDescription are set only for tool-call use cases.
	ToolName        string
	ToolDescription string
	// Fields maps a validated request to template values.
	Fields func(req any) map[string]string
}

// Prompt renders the upstream prompt for a validated request.
func (d Definition) Prompt(req any) (llm.Prompt, error) {
	system, user, err := prompts.Pair(string(d.UseCase))
	if err != nil {
		return llm.Prompt{}, err
	}
	fields := d.Fields(req)

	p := llm.Prompt{
		System: prompts.Format(system, fields),
		User:   prompts.Format(user, fields),
		Format: d.Format,
	}
	if d.Format == llm.FormatToolCall {
		params, err := schemas.Raw(d.Schema)
		if err != nil {
			return llm.Prompt{}, err
		}
		p.Tool = &llm.Tool{
			Name:        d.ToolName,
			Description: d.ToolDescription,
			Parameters:  json.RawMessage(params),
		}
	}
	return p, nil
}

var registry = map[types.UseCase]Definition{
	types.UseCaseSkillGap: {
		UseCase:   types.UseCaseSkillGap,
		ResultKey: "analysis",
		Mode:      parsing.ModeFenced,
		Format:    llm.FormatText,
		Schema:    "skill_gap",
		Fields: func(req any) map[string]string {
			r := req.(*types.SkillGapRequest)
			return map[string]string{
				"Resume":         r.Resume,
				"JobDescription": r.JobDescription,
			}
		},
	},
	types.UseCaseResumeOptimization: {
		UseCase:   types.UseCaseResumeOptimization,
		ResultKey: "optimization",
		Mode:      parsing.ModeFenced,
		Format:    llm.FormatText,
		Schema:    "resume_optimization",
		Fields: func(req any) map[string]string {
			r := req.(*types.ResumeOptimizationRequest)
			template := prompts.Optional(r.Template)
			if template == "" {
				template = "professional"
			}
			return map[string]string{
				"Resume":         r.Resume,
				"JobDescription": r.JobDescription,
				"Template":       template,
			}
		},
	},
	types.UseCaseCoverLetter: {
		UseCase:         types.UseCaseCoverLetter,
		ResultKey:       "coverLetter",
		Mode:            parsing.ModeToolCall,
		Format:          llm.FormatToolCall,
		Schema:          "cover_letter",
		ToolName:        "submit_cover_letter",
		ToolDescription: "Submit the finished cover letter and the resume highlights it draws on.",
		Fields: func(req any) map[string]string {
			r := req.(*types.CoverLetterRequest)
			tone := prompts.Optional(r.Tone)
			if tone == "" {
				tone = "professional"
			}
			return map[string]string{
				"Resume":         r.Resume,
				"JobDescription": r.JobDescription,
				"CompanyName":    r.CompanyName,
				"RoleTitle":      r.RoleTitle,
				"Tone":           tone,
			}
		},
	},
	types.UseCaseInterviewQuestions: {
		UseCase:         types.UseCaseInterviewQuestions,
		ResultKey:       "questions",
		Mode:            parsing.ModeToolCall,
		Format:          llm.FormatToolCall,
		Schema:          "interview_questions",
		ToolName:        "submit_interview_questions",
		ToolDescription: "Submit the generated interview questions.",
		Fields: func(req any) map[string]string {
			r := req.(*types.InterviewQuestionsRequest)
			return map[string]string{
				"JobDescription": r.JobDescription,
				"RoleTitle":      r.RoleTitle,
				"Resume":         prompts.Optional(r.Resume),
			}
		},
	},
	types.UseCaseApplicationInsight: {
		UseCase:   types.UseCaseApplicationInsight,
		ResultKey: "insight",
		Mode:      parsing.ModeDirect,
		Format:    llm.FormatJSONObject,
		Schema:    "application_insight",
		Fields: func(req any) map[string]string {
			r := req.(*types.ApplicationInsightRequest)
			return map[string]string{
				"Company":     r.Company,
				"Position":    r.Position,
				"Status":      r.Status,
				"Notes":       prompts.Optional(r.Notes),
				"AppliedDate": prompts.Optional(r.AppliedDate),
			}
		},
	},
	types.UseCaseNetworkingTip: {
		UseCase:   types.UseCaseNetworkingTip,
		ResultKey: "tips",
		Mode:      parsing.ModeDirect,
		Format:    llm.FormatJSONObject,
		Schema:    "networking_tip",
		Fields: func(req any) map[string]string {
			r := req.(*types.NetworkingTipRequest)
			return map[string]string{
				"ContactName":     r.ContactName,
				"Company":         prompts.Optional(r.Company),
				"Role":            prompts.Optional(r.Role),
				"InteractionType": r.InteractionType,
				"Notes":           prompts.Optional(r.Notes),
			}
		},
	},
}

// Lookup returns the definition for a use case.
func Lookup(uc types.UseCase) (Definition, error) {
	def, ok := registry[uc]
	if !ok {
		return Definition{}, &ErrUnknownUseCase{UseCase: string(uc)}
	}
	return def, nil
}

// MustLookup is Lookup for use cases known at compile time.
func MustLookup(uc types.UseCase) Definition {
	def, err := Lookup(uc)
	if err != nil {
		panic(fmt.Sprintf("gateway: %v", err))
	}
	return def
}
