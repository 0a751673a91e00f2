// Package model holds the value types shared by every validation and
// issuance component: signature results, revisions, SVT claim sets and
// the time/policy records that travel between them.
package model

import (
	"crypto/x509"
	"time"
)

// Status is the per-signature verdict enumeration.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusBadFormat            Status = "error_bad_format"
	StatusSignerInvalid        Status = "error_signer_invalid"
	StatusInvalidSignature     Status = "error_invalid_signature"
)

// PublicKeyType classifies the signer's key algorithm family.
type PublicKeyType string

const (
	KeyTypeRSA   PublicKeyType = "RSA"
	KeyTypeEC    PublicKeyType = "EC"
	KeyTypeEdDSA PublicKeyType = "EdDSA"
	KeyTypeOther PublicKeyType = "other"
)

// PolicyOutcome is the conclusion of a single named policy check.
type PolicyOutcome string

const (
	PolicyPassed       PolicyOutcome = "passed"
	PolicyFailed       PolicyOutcome = "failed"
	PolicyIndeterminate PolicyOutcome = "indeterminate"
)

// PolicyResult pairs a policy identifier with its outcome.
type PolicyResult struct {
	PolicyID  string        `json:"policy_id"`
	Conclusion PolicyOutcome `json:"conclusion"`
}

// TimeValidationType distinguishes a timestamp-derived time from an
// SVT-derived one.
type TimeValidationType string

const (
	TimeValTSA TimeValidationType = "tsa"
	TimeValSVT TimeValidationType = "svt"
)

// TimeValidationResult records one verified point in time and the policy
// checks that were run against the material proving it.
type TimeValidationResult struct {
	Issuer string                `json:"iss"`
	Time   time.Time             `json:"time"`
	Type   TimeValidationType    `json:"type"`
	ID     string                `json:"id"`
	Policy []PolicyResult        `json:"val"`
}

// PDFExtensions carries the PDF-specific fields a non-PDF signature result
// would not have. It is populated only by pdfverify/svt, never by C8,
// which only reads the base SignatureResult shape.
type PDFExtensions struct {
	CoversDocument bool
	RevisionIndex  int
}

// SignatureResult is the per-signature verdict produced by either the
// direct CMS/PDF verification path (C5) or the SVT consumption path (C6).
type SignatureResult struct {
	Success bool   `json:"success"`
	Status  Status `json:"status"`

	SignerCertificate         *x509.Certificate   `json:"-"`
	SignatureCertificateChain []*x509.Certificate `json:"-"`
	ValidatedCertificatePath  []*x509.Certificate `json:"-"`

	CoversDocument  bool `json:"covers_document"`
	InvalidSignCert bool `json:"invalid_sign_cert"`
	IsPAdES         bool `json:"is_pades"`

	PublicKeyType PublicKeyType `json:"public_key_type"`
	KeyLength     int           `json:"key_length"`
	NamedCurve    string        `json:"named_curve,omitempty"`

	SignatureAlgorithmURI string `json:"signature_algorithm_uri"`
	CMSDigestAlg          string `json:"cms_digest_alg"`
	CMSSigAlg             string `json:"cms_sig_alg"`
	CMSAlgoProtectionDigestAlg string `json:"cms_algo_protection_digest_alg,omitempty"`
	CMSAlgoProtectionSigAlg    string `json:"cms_algo_protection_sig_alg,omitempty"`

	ClaimedSigningTime *time.Time `json:"claimed_signing_time,omitempty"`

	SignatureTimestampList []TimeValidationResult `json:"signature_timestamp_list"`
	TimeValidationResults  []TimeValidationResult `json:"time_validation_results"`
	PolicyValidationResults []PolicyResult        `json:"policy_validation_results"`

	SVTClaims *ClaimSet `json:"svt_claims,omitempty"`
	SVTJWT    string    `json:"svt_jwt,omitempty"`

	// SignatureValueOctets and SignedBytes are the raw material the
	// SVT issuer (C7) and matcher (C6) hash; not part of the public
	// JSON shape but required to compute sig_ref/sb_hash.
	SignatureValueOctets []byte `json:"-"`
	SignedBytes          []byte `json:"-"`

	Extensions PDFExtensions `json:"-"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	Err error `json:"-"`
}

// DocumentStatus is the aggregate verdict produced by C8.
type DocumentStatus string

const (
	DocNoSignatures DocumentStatus = "no-signatures"
	DocOK           DocumentStatus = "ok"
	DocSomeInvalid  DocumentStatus = "some-invalid"
	DocNoneValid    DocumentStatus = "none-valid"
)

// DocumentResult is the whole-document verdict C8 reduces to.
type DocumentResult struct {
	Status          DocumentStatus     `json:"status"`
	SignatureCount  int                `json:"signature_count"`
	ValidCount      int                `json:"valid_count"`
	Results         []SignatureResult  `json:"results"`
}

// Diagnostic is a non-fatal observation surfaced alongside a result, e.g.
// svt-algorithm-unsupported.
type Diagnostic struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
