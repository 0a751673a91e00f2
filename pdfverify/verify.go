package pdfverify

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"time"

	"github.com/digitorus/svtvalidate/cms"
	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/svtvalidate/revision"
)

// PathValidator is the injected certificate-path collaborator; pdfverify
// never constructs or trusts a chain on its own. See model.PathValidator.
type PathValidator = model.PathValidator

// Verifier runs C5 for every signature dictionary in a document.
type Verifier struct {
	pathValidator          PathValidator
	validateTimestampCerts bool
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTimestampCertValidation enables running the path validator over an
// embedded signature timestamp's own signer, not just the content
// signature's.
func WithTimestampCertValidation(enable bool) Option {
	return func(v *Verifier) { v.validateTimestampCerts = enable }
}

// NewVerifier builds a Verifier around the given path validator.
func NewVerifier(pathValidator PathValidator, opts ...Option) *Verifier {
	v := &Verifier{pathValidator: pathValidator}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Located holds what LocateRevision learned about a signature dictionary
// before any cryptographic verification runs: its signed byte range and
// the index of the revision that applied it. revisionIndex is -1 when no
// owning revision could be found.
type Located struct {
	SignedBytes   []byte
	Contents      []byte
	RevisionIndex int
}

// LocateRevision reads a signature dictionary's byte range and marks its
// owning revision as a signature (or document-timestamp) revision, so
// that C4's safe_update classification, finalized afterward via
// revision.FinalizeSafety, accounts for it. Call this for every signature
// dictionary before finalizing safety and before calling VerifySignature,
// since coverage depends on every later revision's finalized safe_update.
func LocateRevision(pdfBytes []byte, revisions []model.Revision, field SignatureField) (Located, error) {
	signedBytes, totalLength, err := readByteRange(field.Value, bytes.NewReader(pdfBytes))
	if err != nil {
		return Located{RevisionIndex: -1}, err
	}

	loc := Located{SignedBytes: signedBytes, Contents: []byte(field.Value.Key("Contents").RawString()), RevisionIndex: -1}
	if idx, found := revision.RevisionForByteRangeLength(revisions, totalLength); found {
		revision.MarkSignature(revisions, idx, field.IsDocTimestamp)
		loc.RevisionIndex = idx
	}
	return loc, nil
}

// VerifySignature runs C3, the path validator, and timestamp checks for
// one already-located signature dictionary, merging the outcome and its
// revision-coverage fields into a SignatureResult. revisions must already
// have safe_update finalized (revision.FinalizeSafety) across every
// signature dictionary in the document.
func (v *Verifier) VerifySignature(ctx context.Context, revisions []model.Revision, loc Located, field SignatureField) model.SignatureResult {
	res := model.SignatureResult{Status: model.StatusBadFormat}

	if loc.RevisionIndex >= 0 {
		res.Extensions.RevisionIndex = loc.RevisionIndex
		res.Extensions.CoversDocument = revision.CoversDocument(revisions, loc.RevisionIndex)
		res.CoversDocument = res.Extensions.CoversDocument
	}

	if field.IsDocTimestamp {
		return v.verifyDocTimestamp(ctx, loc.Contents, loc.SignedBytes, res)
	}
	return v.verifyContentSignature(ctx, loc.Contents, loc.SignedBytes, res)
}

func (v *Verifier) verifyContentSignature(ctx context.Context, contents, signedBytes []byte, res model.SignatureResult) model.SignatureResult {
	parsed, err := cms.Parse(contents, signedBytes)
	if err != nil {
		res.Err = err
		res.Status = statusForError(err)
		return res
	}

	res.SignerCertificate = parsed.SignerCertificate
	res.SignatureCertificateChain = parsed.Chain
	res.IsPAdES = parsed.IsPAdES
	res.InvalidSignCert = parsed.InvalidSignCert
	res.ClaimedSigningTime = parsed.ClaimedSigningTime
	res.CMSDigestAlg = parsed.CMSDigestAlg
	res.CMSSigAlg = parsed.CMSSigAlg
	res.CMSAlgoProtectionDigestAlg = parsed.AlgoProtectionDigestAlg
	res.CMSAlgoProtectionSigAlg = parsed.AlgoProtectionSigAlg
	res.PublicKeyType = parsed.PublicKeyType
	res.KeyLength = parsed.KeyLength
	res.NamedCurve = parsed.NamedCurve
	res.SignatureAlgorithmURI = parsed.CMSSigAlg
	res.SignatureValueOctets = parsed.SignatureValueOctets
	res.SignedBytes = signedBytes

	if parsed.InvalidSignCert {
		res.Success = false
		res.Status = model.StatusSignerInvalid
		return res
	}

	referenceTime := time.Now()
	if parsed.ClaimedSigningTime != nil {
		referenceTime = *parsed.ClaimedSigningTime
	}

	if len(parsed.EmbeddedTimestampToken) > 0 {
		if entry, ts, terr := v.verifyEmbeddedTimestamp(ctx, parsed.EmbeddedTimestampToken, parsed.SignatureValueOctets); terr == nil {
			res.SignatureTimestampList = append(res.SignatureTimestampList, *entry)
			referenceTime = ts
		}
	}

	if v.pathValidator == nil {
		res.Success = false
		res.Status = model.StatusSignerInvalid
		res.Err = model.New(model.ErrCertPathFailure, "no certificate path validator configured")
		return res
	}

	path, outcomes, perr := v.pathValidator.ValidatePath(ctx, parsed.SignerCertificate, parsed.Chain, referenceTime)
	if perr != nil {
		res.Success = false
		res.Status = model.StatusSignerInvalid
		res.Err = model.Wrap(model.ErrCertPathFailure, "certificate path validation failed", perr)
		return res
	}

	res.ValidatedCertificatePath = path
	res.PolicyValidationResults = outcomes
	res.TimeValidationResults = res.SignatureTimestampList

	res.Success = allPassed(outcomes)
	if res.Success {
		res.Status = model.StatusSuccess
	} else {
		res.Status = model.StatusInvalidSignature
	}
	return res
}

func (v *Verifier) verifyDocTimestamp(ctx context.Context, contents, signedBytes []byte, res model.SignatureResult) model.SignatureResult {
	parsed, ts, err := cms.ParseTimestampToken(contents, signedBytes)
	if err != nil {
		res.Err = err
		res.Status = model.StatusInvalidSignature
		return res
	}

	res.SignerCertificate = parsed.SignerCertificate
	res.SignatureCertificateChain = parsed.Chain
	res.CMSDigestAlg = parsed.CMSDigestAlg
	res.CMSSigAlg = parsed.CMSSigAlg
	res.SignatureAlgorithmURI = parsed.CMSSigAlg
	res.PublicKeyType = parsed.PublicKeyType
	res.KeyLength = parsed.KeyLength
	res.NamedCurve = parsed.NamedCurve
	res.ClaimedSigningTime = &ts.Time
	res.SignedBytes = signedBytes

	outcomes := []model.PolicyResult{{PolicyID: "timestamp-signature", Conclusion: model.PolicyPassed}}
	if v.pathValidator != nil && parsed.SignerCertificate != nil {
		path, pathOutcomes, perr := v.pathValidator.ValidatePath(ctx, parsed.SignerCertificate, parsed.Chain, ts.Time)
		if perr == nil {
			res.ValidatedCertificatePath = path
			outcomes = append(outcomes, pathOutcomes...)
		}
	}

	res.PolicyValidationResults = outcomes
	res.TimeValidationResults = []model.TimeValidationResult{{
		Issuer: issuerName(parsed.SignerCertificate),
		Time:   ts.Time,
		Type:   model.TimeValTSA,
		Policy: outcomes,
	}}

	res.Success = allPassed(outcomes)
	if res.Success {
		res.Status = model.StatusSuccess
	} else {
		res.Status = model.StatusInvalidSignature
	}
	return res
}

// verifyEmbeddedTimestamp verifies a content signature's own timestamp
// attribute and, when configured, runs the path validator over its
// signer too.
func (v *Verifier) verifyEmbeddedTimestamp(ctx context.Context, tokenBytes, sigOctets []byte) (*model.TimeValidationResult, time.Time, error) {
	parsed, ts, err := cms.ParseTimestampToken(tokenBytes, sigOctets)
	if err != nil {
		return nil, time.Time{}, err
	}

	outcomes := []model.PolicyResult{{PolicyID: "timestamp-signature", Conclusion: model.PolicyPassed}}
	if v.validateTimestampCerts && v.pathValidator != nil && parsed.SignerCertificate != nil {
		if _, pathOutcomes, perr := v.pathValidator.ValidatePath(ctx, parsed.SignerCertificate, parsed.Chain, ts.Time); perr == nil {
			outcomes = append(outcomes, pathOutcomes...)
		}
	}

	return &model.TimeValidationResult{
		Issuer: issuerName(parsed.SignerCertificate),
		Time:   ts.Time,
		Type:   model.TimeValTSA,
		Policy: outcomes,
	}, ts.Time, nil
}

func statusForError(err error) model.Status {
	var merr *model.Error
	if errors.As(err, &merr) {
		switch merr.Kind {
		case model.ErrCMSParse, model.ErrBadPDF, model.ErrPAdESBindingFailure:
			return model.StatusBadFormat
		}
	}
	return model.StatusInvalidSignature
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

func issuerName(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return cert.Subject.CommonName
}
