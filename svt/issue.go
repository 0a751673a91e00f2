package svt

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"hash"
	"time"

	"github.com/digitorus/svtvalidate/algo"
	"github.com/digitorus/svtvalidate/certref"
	"github.com/digitorus/svtvalidate/model"
	"github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"
)

// IssuerOptions configures C7.
type IssuerOptions struct {
	Issuer                 string
	DefaultBasicValidation bool
}

// IssueOption sets one IssuerOptions field.
type IssueOption func(*IssuerOptions)

// WithIssuerIdentity sets the iss claim recorded on every issued SVT.
func WithIssuerIdentity(iss string) IssueOption {
	return func(o *IssuerOptions) { o.Issuer = iss }
}

// WithDefaultBasicValidation injects a basic-validation policy outcome
// derived from the result's Success flag whenever PolicyValidationResults
// is empty, rather than leaving sig_val empty.
func WithDefaultBasicValidation(enable bool) IssueOption {
	return func(o *IssuerOptions) { o.DefaultBasicValidation = enable }
}

type jwtPayload struct {
	model.ClaimSet
	Issuer   string `json:"iss"`
	IssuedAt int64  `json:"iat"`
	ID       string `json:"jti"`
}

// Issue assembles and signs an SVT claim set attesting a single prior
// validation result. results must carry exactly the one signature being
// attested; batch issuance calls Issue once per signature. Issuance never
// returns a partial or unsigned output - any error aborts the call
// entirely.
func Issue(ctx context.Context, results []model.SignatureResult, signer crypto.Signer, alg string, issuerCerts []*x509.Certificate, opts ...IssueOption) (*model.SignedSVT, error) {
	if len(results) != 1 {
		return nil, model.New(model.ErrInternalInvariantViolation, "Issue attests exactly one signature result per call")
	}
	res := results[0]

	options := IssuerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	digestName, err := algo.JWSAlgDigest(alg)
	if err != nil {
		return nil, err
	}
	digestCtor, err := algo.DigestConstructor(digestName)
	if err != nil {
		return nil, err
	}

	sigHash := digestBase64(digestCtor, res.SignatureValueOctets)
	sbHash := digestBase64(digestCtor, res.SignedBytes)

	cref, err := certref.Encode(res.SignerCertificate, res.SignatureCertificateChain, res.ValidatedCertificatePath, digestCtor)
	if err != nil {
		return nil, err
	}

	sigVal := res.PolicyValidationResults
	if len(sigVal) == 0 && options.DefaultBasicValidation {
		conclusion := model.PolicyFailed
		if res.Success {
			conclusion = model.PolicyPassed
		}
		sigVal = []model.PolicyResult{{PolicyID: "basic-validation", Conclusion: conclusion}}
	}

	var timeVal []model.TimeValidationResult
	for _, tv := range res.TimeValidationResults {
		if hasPassed(tv.Policy) {
			timeVal = append(timeVal, tv)
		}
	}

	claims := model.ClaimSet{
		SigRef:  model.SigRef{SigHash: sigHash, SBHash: sbHash},
		SigVal:  sigVal,
		TimeVal: timeVal,
		CertRef: cref,
	}

	payload := jwtPayload{
		ClaimSet: claims,
		Issuer:   options.Issuer,
		IssuedAt: time.Now().UTC().Unix(),
		ID:       uuid.NewString(),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "failed to marshal SVT claim set", err)
	}

	opaque, err := newOpaqueSigner(signer, jose.SignatureAlgorithm(alg), digestName)
	if err != nil {
		return nil, err
	}

	x5c := make([]string, 0, len(issuerCerts))
	for _, c := range issuerCerts {
		x5c = append(x5c, base64.StdEncoding.EncodeToString(c.Raw))
	}

	signerOpts := (&jose.SignerOptions{}).WithType("JWT").WithHeader("x5c", x5c)
	jwsSigner, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.SignatureAlgorithm(alg), Key: opaque}, signerOpts)
	if err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "failed to construct JWS signer", err)
	}

	jws, err := jwsSigner.Sign(payloadBytes)
	if err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "failed to sign SVT claim set", err)
	}

	compact, err := jws.CompactSerialize()
	if err != nil {
		return nil, model.Wrap(model.ErrInternalInvariantViolation, "failed to serialize SVT JWS", err)
	}

	return &model.SignedSVT{Claims: claims, Compact: compact}, nil
}

func hasPassed(policies []model.PolicyResult) bool {
	for _, p := range policies {
		if p.Conclusion == model.PolicyPassed {
			return true
		}
	}
	return false
}

func digestBase64(ctor func() hash.Hash, data []byte) string {
	h := ctor()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
