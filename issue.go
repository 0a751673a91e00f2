package svtvalidate

import (
	"context"
	"crypto"
	"crypto/x509"

	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/svtvalidate/svt"
)

// Issuer signs Signature Validation Tokens over prior validation results.
type Issuer struct {
	opts []svt.IssueOption
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithIssuerIdentity sets the iss claim recorded on every token this
// Issuer signs.
func WithIssuerIdentity(iss string) IssuerOption {
	return func(i *Issuer) { i.opts = append(i.opts, svt.WithIssuerIdentity(iss)) }
}

// WithDefaultBasicValidation fills sig_val with a basic-validation policy
// outcome derived from the result's Success flag whenever a result's own
// PolicyValidationResults is empty.
func WithDefaultBasicValidation(enable bool) IssuerOption {
	return func(i *Issuer) { i.opts = append(i.opts, svt.WithDefaultBasicValidation(enable)) }
}

// NewIssuer builds an Issuer from functional options.
func NewIssuer(opts ...IssuerOption) *Issuer {
	iss := &Issuer{}
	for _, opt := range opts {
		opt(iss)
	}
	return iss
}

// Issue signs a Signature Validation Token attesting result, using signer
// (possibly hardware- or cloud-backed) under alg, with issuerCerts carried
// in the token's x5c header for later chain validation by Validate.
func (i *Issuer) Issue(ctx context.Context, result model.SignatureResult, signer crypto.Signer, alg string, issuerCerts []*x509.Certificate) (*model.SignedSVT, error) {
	return svt.Issue(ctx, []model.SignatureResult{result}, signer, alg, issuerCerts, i.opts...)
}
