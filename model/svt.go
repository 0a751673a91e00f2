package model

// CertRefType distinguishes the two cert_ref encodings C2 can emit.
type CertRefType string

const (
	CertRefChain     CertRefType = "chain"
	CertRefChainHash CertRefType = "chain_hash"
)

// CertRef is the compact certificate reference claim produced by C2.
type CertRef struct {
	Type CertRefType `json:"type"`
	Ref  []string    `json:"ref"`
}

// SigRef fingerprints the signature this claim set attests.
type SigRef struct {
	SigHash string `json:"sig_hash"`
	SBHash  string `json:"sb_hash"`
}

// ClaimSet is the SVT payload, signed as a JWS.
type ClaimSet struct {
	SigRef  SigRef                  `json:"sig_ref"`
	SigVal  []PolicyResult          `json:"sig_val"`
	TimeVal []TimeValidationResult  `json:"time_val"`
	CertRef CertRef                 `json:"cert_ref"`
	Ext     map[string]interface{}  `json:"ext,omitempty"`
}

// SignedSVT is a claim set together with its compact JWS serialization.
type SignedSVT struct {
	Claims  ClaimSet
	Compact string
}
