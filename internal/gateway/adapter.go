// Package gateway is the adapter entry point for the AI use cases. Run validates a
// request, renders its prompt, makes exactly one upstream call, classifies the
// outcome and parses the result, in that order.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/parsing"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/jobcoach/jobcoach/internal/validation"
)

// Response is a parsed result under its use-case key, encoded as {"<key>": result}.
type Response struct {
	Key    string
	Result any
}

// MarshalJSON encodes the response as a single-key object.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{r.Key: r.Result})
}

// Adapter serves adapter requests. It is stateless and safe for concurrent use.
type Adapter struct {
	caller    llm.Caller
	validator *validation.Validator
	logger    *slog.Logger
}

// New creates an Adapter around the given upstream caller.
func New(caller llm.Caller, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		caller:    caller,
		validator: validation.New(),
		logger:    logger,
	}
}

// Run handles one request. Every failure is returned as a typed error:
// *validation.ValidationError, *ErrConfiguration, *ErrRateLimited,
// *ErrPaymentRequired, *ErrUpstream, *parsing.UnparsableResultError or
// *parsing.MalformedResultError.
func (a *Adapter) Run(ctx context.Context, uc types.UseCase, raw []byte) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "adapter panic", "use_case", uc, "panic", r)
			resp, err = Response{}, &ErrUpstream{Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	def, err := Lookup(uc)
	if err != nil {
		return Response{}, err
	}

	req, err := a.validator.Validate(uc, raw)
	if err != nil {
		return Response{}, err
	}

	for _, f := range validation.ScanForInjection(def.Fields(req)) {
		a.logger.WarnContext(ctx, "possible prompt injection in request",
			"use_case", uc, "field", f.Field, "keywords", f.Keywords)
	}

	prompt, err := def.Prompt(req)
	if err != nil {
		return Response{}, fmt.Errorf("render prompt for %s: %w", uc, err)
	}

	result, err := a.caller.Call(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			a.logger.ErrorContext(ctx, "AI credential missing", "use_case", uc)
			return Response{}, &ErrConfiguration{Cause: err}
		}
		return Response{}, &ErrUpstream{Cause: err}
	}

	switch r := result.(type) {
	case llm.Success:
		return a.parse(ctx, def, r.Body)
	case llm.RateLimited:
		a.logger.WarnContext(ctx, "AI provider rate limited", "use_case", uc, "retry_after", r.RetryAfterSeconds)
		return Response{}, &ErrRateLimited{RetryAfter: r.RetryAfterSeconds}
	case llm.PaymentRequired:
		a.logger.WarnContext(ctx, "AI provider payment required", "use_case", uc)
		return Response{}, &ErrPaymentRequired{}
	case llm.UpstreamFailure:
		a.logger.ErrorContext(ctx, "AI provider failure",
			"use_case", uc, "status", r.Status, "body", string(r.Body), "error", r.Err)
		return Response{}, &ErrUpstream{Status: r.Status, Cause: r.Err}
	case llm.ClientError:
		a.logger.ErrorContext(ctx, "AI provider rejected request", "use_case", uc, "status", r.Status, "details", r.Details)
		return Response{}, &ErrUpstream{Status: r.Status}
	default:
		return Response{}, &ErrUpstream{Cause: fmt.Errorf("unexpected result %T", result)}
	}
}

func (a *Adapter) parse(ctx context.Context, def Definition, body []byte) (Response, error) {
	dst := types.NewResult(def.UseCase)
	err := parsing.Parse(body, def.Mode, def.Schema, dst)
	if err == nil {
		return Response{Key: def.ResultKey, Result: dst}, nil
	}

	var unparsable *parsing.UnparsableResultError
	var malformed *parsing.MalformedResultError
	switch {
	case errors.As(err, &unparsable):
		a.logger.ErrorContext(ctx, "unparsable AI result",
			"use_case", def.UseCase, "mode", def.Mode.String(), "raw", unparsable.Raw, "error", unparsable.Cause)
	case errors.As(err, &malformed):
		candidate, _ := parsing.Candidate(body, def.Mode)
		a.logger.ErrorContext(ctx, "malformed AI result",
			"use_case", def.UseCase, "details", malformed.Details(), "parsed", candidate)
	default:
		a.logger.ErrorContext(ctx, "AI result parse failed", "use_case", def.UseCase, "error", err)
	}
	return Response{}, err
}
