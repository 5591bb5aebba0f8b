// Package policyopa evaluates the upload acceptance policy. The policy
// (size cap, accepted media types) is a Rego module compiled once at
// startup and queried per upload.
package policyopa

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"authstamp/internal/domain"
)

//go:embed upload.rego
var uploadModule string

const defaultQuery = "data.authstamp.upload.result"

type Engine struct {
	query rego.PreparedEvalQuery
	// maxSizeBytes overrides the policy default when positive.
	maxSizeBytes int64
}

func NewEngine(ctx context.Context, maxSizeBytes int64) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Module("upload.rego", uploadModule),
		rego.StrictBuiltinErrors(true),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared, maxSizeBytes: maxSizeBytes}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input domain.UploadPolicyInput) (domain.PolicyResult, error) {
	if e == nil {
		return domain.PolicyResult{}, errors.New("policy engine is nil")
	}
	evalInput := map[string]any{
		"name":       input.Name,
		"size_bytes": input.SizeBytes,
		"media_type": input.MediaType,
	}
	if e.maxSizeBytes > 0 {
		evalInput["max_size_bytes"] = e.maxSizeBytes
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(evalInput))
	if err != nil {
		return domain.PolicyResult{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyResult{}, errors.New("empty policy result")
	}
	result, err := decodeResult(results[0].Expressions[0].Value)
	if err != nil {
		return domain.PolicyResult{}, err
	}
	normalizeResult(&result)
	return result, nil
}

func decodeResult(value any) (domain.PolicyResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.PolicyResult{}, err
	}
	var result domain.PolicyResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.PolicyResult{}, err
	}
	return result, nil
}

func normalizeResult(result *domain.PolicyResult) {
	if result == nil {
		return
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
}
