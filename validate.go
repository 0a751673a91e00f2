// Package svtvalidate validates PAdES/CMS signatures embedded in PDF
// documents, optionally short-circuiting re-validation via a trusted
// Signature Validation Token, and issues new SVTs over prior validation
// results.
package svtvalidate

import (
	"context"

	"github.com/digitorus/svtvalidate/aggregate"
	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/svtvalidate/pdfverify"
	"github.com/digitorus/svtvalidate/revision"
	"github.com/digitorus/svtvalidate/svt"
)

// Validator runs the full verify path: revision analysis, SVT matching,
// and the CMS/path-validator fallback, over a PDF document's signatures.
type Validator struct {
	pathValidator model.PathValidator
	verifier      *pdfverify.Verifier
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*validatorOptions)

type validatorOptions struct {
	verifierOpts []pdfverify.Option
}

// WithTimestampCertValidation enables validating embedded signature
// timestamp certificates through the injected path validator, not just
// the content signature's own certificate.
func WithTimestampCertValidation(enable bool) ValidatorOption {
	return func(o *validatorOptions) {
		o.verifierOpts = append(o.verifierOpts, pdfverify.WithTimestampCertValidation(enable))
	}
}

// NewValidator builds a Validator around the injected certificate path
// validator (functional options, in the teacher's idiom). pathValidator
// is shared by both the direct verification path and SVT matching.
func NewValidator(pathValidator model.PathValidator, opts ...ValidatorOption) *Validator {
	var o validatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Validator{
		pathValidator: pathValidator,
		verifier:      pdfverify.NewVerifier(pathValidator, o.verifierOpts...),
	}
}

// Validate analyzes every revision of pdfBytes and produces one
// SignatureResult per signature dictionary, in document order. SVT
// matching is attempted first for every document timestamp's carried
// tokens; unmatched content signatures fall through to direct CMS
// verification.
func (v *Validator) Validate(ctx context.Context, pdfBytes []byte) ([]model.SignatureResult, error) {
	revisions, err := revision.Analyze(pdfBytes)
	if err != nil {
		return nil, err
	}

	fields, err := pdfverify.Discover(pdfBytes)
	if err != nil {
		return nil, err
	}

	located := make([]pdfverify.Located, len(fields))
	locateErrs := make([]error, len(fields))
	for i, field := range fields {
		loc, lerr := pdfverify.LocateRevision(pdfBytes, revisions, field)
		located[i], locateErrs[i] = loc, lerr
	}
	revision.FinalizeSafety(revisions)

	results := make([]model.SignatureResult, len(fields))
	var tokens []string
	for i, field := range fields {
		if locateErrs[i] != nil {
			results[i] = model.SignatureResult{Status: model.StatusBadFormat, Err: locateErrs[i]}
			continue
		}
		results[i] = v.verifier.VerifySignature(ctx, revisions, located[i], field)
		if field.IsDocTimestamp {
			if found, terr := svt.ExtractTokens(located[i].Contents); terr == nil {
				tokens = append(tokens, found...)
			}
		}
	}

	if len(tokens) > 0 {
		var diags []model.Diagnostic
		results, diags = svt.Match(ctx, tokens, results, v.pathValidator)
		if len(diags) > 0 {
			results[0].Diagnostics = append(results[0].Diagnostics, diags...)
		}
	}

	return results, nil
}

// IsSigned reports whether pdfBytes carries at least one signature
// dictionary, without running any cryptographic verification.
func IsSigned(pdfBytes []byte) bool {
	fields, err := pdfverify.Discover(pdfBytes)
	return err == nil && len(fields) > 0
}

// Aggregate reduces per-signature results to a whole-document verdict.
func Aggregate(results []model.SignatureResult) model.DocumentResult {
	return aggregate.Reduce(results)
}
