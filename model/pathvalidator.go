package model

import (
	"context"
	"crypto/x509"
	"time"
)

// PathValidator is the external certificate-path construction and trust
// collaborator: given a leaf certificate and the certificates carried
// alongside it, it builds and validates a trust path at referenceTime and
// reports one PolicyResult per check it ran (trust anchor, expiry,
// revocation, ...). Both the PDF signature verifier and the SVT matcher
// inject the same collaborator rather than constructing trust decisions
// themselves.
type PathValidator interface {
	ValidatePath(ctx context.Context, leaf *x509.Certificate, chain []*x509.Certificate, referenceTime time.Time) (path []*x509.Certificate, outcomes []PolicyResult, err error)
}
