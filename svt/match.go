package svt

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/digitorus/svtvalidate/algo"
	"github.com/digitorus/svtvalidate/model"
	"github.com/go-jose/go-jose/v3"
)

type tokenClaims struct {
	model.ClaimSet
	Issuer   string `json:"iss"`
	IssuedAt int64  `json:"iat"`
	ID       string `json:"jti"`
}

// Match verifies every SVT JWS in tokens and binds each to the first
// unbound content signature whose fingerprint matches its sig_ref.sig_hash,
// in token order. Bound signatures have their result replaced per the
// binding rule; unbound signatures are returned unchanged for the caller
// to fall through to pdfverify. pathValidator validates each token's x5c
// chain; a token whose digest algorithm the registry does not recognize
// yields an svt-algorithm-unsupported diagnostic rather than aborting the
// whole match.
func Match(ctx context.Context, tokens []string, signatures []model.SignatureResult, pathValidator model.PathValidator) ([]model.SignatureResult, []model.Diagnostic) {
	results := make([]model.SignatureResult, len(signatures))
	copy(results, signatures)
	bound := make([]bool, len(results))

	var diagnostics []model.Diagnostic
	note := func(kind model.ErrorKind, msg string) {
		diagnostics = append(diagnostics, model.Diagnostic{Kind: kind, Message: msg})
	}

	for _, token := range tokens {
		jws, err := jose.ParseSigned(token)
		if err != nil {
			note(model.ErrSVTParseError, "failed to parse SVT JWS: "+err.Error())
			continue
		}
		if len(jws.Signatures) == 0 {
			note(model.ErrSVTParseError, "SVT JWS carries no signature")
			continue
		}
		header := jws.Signatures[0].Header

		digestName, derr := algo.JWSAlgDigest(header.Algorithm)
		if derr != nil {
			note(model.ErrSVTAlgorithmUnsupported, "unsupported SVT digest algorithm "+header.Algorithm)
			continue
		}
		digestCtor, derr := algo.DigestConstructor(digestName)
		if derr != nil {
			note(model.ErrSVTAlgorithmUnsupported, derr.Error())
			continue
		}

		chain, cerr := extractX5C(header)
		if cerr != nil {
			note(model.ErrSVTVerifyError, cerr.Error())
			continue
		}

		payload, verr := jws.Verify(chain[0].PublicKey)
		if verr != nil {
			note(model.ErrSVTVerifyError, "SVT JWS signature verification failed: "+verr.Error())
			continue
		}

		var claims tokenClaims
		if jerr := json.Unmarshal(payload, &claims); jerr != nil {
			note(model.ErrSVTParseError, "failed to parse SVT claim set: "+jerr.Error())
			continue
		}
		issuedAt := time.Unix(claims.IssuedAt, 0).UTC()

		if pathValidator == nil {
			note(model.ErrCertPathFailure, "no certificate path validator configured for SVT issuer trust")
			continue
		}
		_, outcomes, perr := pathValidator.ValidatePath(ctx, chain[0], chain, issuedAt)
		if perr != nil || !allPassed(outcomes) {
			note(model.ErrCertPathFailure, "SVT issuer certificate path did not validate")
			continue
		}

		for i, sig := range results {
			if bound[i] {
				continue
			}
			h := digestCtor()
			h.Write(sig.SignatureValueOctets)
			if base64.StdEncoding.EncodeToString(h.Sum(nil)) != claims.SigRef.SigHash {
				continue
			}
			bound[i] = true
			results[i] = bind(results[i], claims, header.Algorithm, chain[0], issuedAt)
			break
		}
	}

	return results, diagnostics
}

// bind substitutes an SVT-backed verdict into a content signature's
// result per §4.6's binding rule.
func bind(res model.SignatureResult, claims tokenClaims, jwsAlg string, issuerLeaf *x509.Certificate, issuedAt time.Time) model.SignatureResult {
	res.PolicyValidationResults = claims.SigVal
	res.TimeValidationResults = append(claims.TimeVal, model.TimeValidationResult{
		Issuer: claims.Issuer,
		Time:   issuedAt,
		Type:   model.TimeValSVT,
		ID:     claims.ID,
		Policy: []model.PolicyResult{{PolicyID: "pkix-validation", Conclusion: model.PolicyPassed}},
	})
	res.SignatureTimestampList = nil

	if uri, err := algo.JWSAlgToURI(jwsAlg); err == nil {
		res.SignatureAlgorithmURI = uri
	}
	keyType, bits, curve := algo.KeyParams(issuerLeaf.PublicKey)
	res.PublicKeyType = keyType
	res.KeyLength = bits
	res.NamedCurve = curve

	claimSet := claims.ClaimSet
	res.SVTClaims = &claimSet

	res.Success = allPassed(res.PolicyValidationResults)
	if res.Success {
		res.Status = model.StatusSuccess
	} else {
		res.Status = model.StatusInvalidSignature
	}
	return res
}

func extractX5C(header jose.Header) ([]*x509.Certificate, error) {
	raw, ok := header.ExtraHeaders[jose.HeaderKey("x5c")]
	if !ok {
		return nil, model.New(model.ErrSVTVerifyError, "SVT JWS header carries no x5c")
	}
	arr, ok := raw.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, model.New(model.ErrSVTVerifyError, "SVT JWS x5c header is malformed or empty")
	}

	chain := make([]*x509.Certificate, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, model.New(model.ErrSVTVerifyError, "SVT JWS x5c entry is not a string")
		}
		der, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, model.Wrap(model.ErrSVTVerifyError, "SVT JWS x5c entry is not valid base64", err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, model.Wrap(model.ErrSVTVerifyError, "SVT JWS x5c entry is not a valid certificate", err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

func allPassed(outcomes []model.PolicyResult) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if o.Conclusion != model.PolicyPassed {
			return false
		}
	}
	return true
}
