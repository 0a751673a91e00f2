// Package pathvalidator is a concrete model.PathValidator: it builds an
// x509 chain for a leaf certificate against configured trust anchors and
// reports trust, key-usage and revocation outcomes as policy results.
// Revocation is checked against CRL/OCSP responses carried in the
// document's own DSS archival (revocation.InfoArchival) first, falling
// back to live OCSP/CRL fetches when external checking is enabled.
package pathvalidator

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/svtvalidate/revocation"
	"golang.org/x/crypto/ocsp"
)

// PolicyIDs reported by Validator.
const (
	PolicyTrustAnchor = "trust-anchor"
	PolicyKeyUsage    = "key-usage"
	PolicyRevocation  = "revocation"
)

// Validator implements model.PathValidator over a pool of trusted root
// certificates, with optional fallback to trusting certificates embedded
// in the document itself.
type Validator struct {
	roots               *x509.CertPool
	allowUntrustedRoots bool
	requiredEKUs        []x509.ExtKeyUsage
	externalRevocation  bool
	httpClient          *http.Client
	archival            *revocation.InfoArchival
}

// Option configures a Validator.
type Option func(*Validator)

// WithTrustedRoots sets the pool of trust anchors chains are built
// against. Without this option the Validator trusts nothing but what
// AllowUntrustedRoots permits.
func WithTrustedRoots(pool *x509.CertPool) Option {
	return func(v *Validator) { v.roots = pool }
}

// WithAllowUntrustedRoots permits falling back to the certificates
// carried alongside the leaf as trust anchors when no path to a
// configured root exists. Intended for test and development use.
func WithAllowUntrustedRoots(enable bool) Option {
	return func(v *Validator) { v.allowUntrustedRoots = enable }
}

// WithRequiredEKUs overrides the extended key usages a chain must
// satisfy. Defaults to the PDF/PAdES document-signing EKU plus the
// common alternatives (email protection, client auth).
func WithRequiredEKUs(ekus []x509.ExtKeyUsage) Option {
	return func(v *Validator) { v.requiredEKUs = ekus }
}

// WithExternalRevocationCheck enables live OCSP/CRL fetches over HTTP
// when the DSS archival carries no revocation information for a
// certificate.
func WithExternalRevocationCheck(enable bool, client *http.Client) Option {
	return func(v *Validator) {
		v.externalRevocation = enable
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithRevocationArchival supplies the DSS-extracted CRL/OCSP responses
// to check against before falling back to external fetches.
func WithRevocationArchival(archival *revocation.InfoArchival) Option {
	return func(v *Validator) { v.archival = archival }
}

// New builds a Validator from functional options.
func New(opts ...Option) *Validator {
	v := &Validator{
		requiredEKUs: []x509.ExtKeyUsage{x509.ExtKeyUsage(36), x509.ExtKeyUsageEmailProtection, x509.ExtKeyUsageClientAuth},
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidatePath builds a chain from leaf through chain's intermediates to
// a trusted root, evaluated at referenceTime, and reports one
// PolicyResult per check run: trust-anchor, key-usage, and (when
// revocation information is available) revocation.
func (v *Validator) ValidatePath(ctx context.Context, leaf *x509.Certificate, chain []*x509.Certificate, referenceTime time.Time) ([]*x509.Certificate, []model.PolicyResult, error) {
	if leaf == nil {
		return nil, nil, model.New(model.ErrCertPathFailure, "no leaf certificate to validate")
	}

	intermediates := x509.NewCertPool()
	for _, c := range chain {
		if c.Equal(leaf) {
			continue
		}
		intermediates.AddCert(c)
	}

	verifyOpts := x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		CurrentTime:   referenceTime,
		KeyUsages:     v.requiredEKUs,
	}

	paths, err := leaf.Verify(verifyOpts)
	trustAnchor := model.PolicyResult{PolicyID: PolicyTrustAnchor, Conclusion: model.PolicyPassed}
	var path []*x509.Certificate

	if err != nil {
		if v.allowUntrustedRoots {
			altOpts := verifyOpts
			altOpts.Roots = intermediates
			altOpts.Roots.AddCert(leaf)
			altPaths, altErr := leaf.Verify(altOpts)
			if altErr != nil {
				trustAnchor.Conclusion = model.PolicyFailed
				return nil, []model.PolicyResult{trustAnchor}, model.Wrap(model.ErrCertPathFailure, "no path to a trusted root", err)
			}
			path = altPaths[0]
			trustAnchor.Conclusion = model.PolicyIndeterminate
		} else {
			trustAnchor.Conclusion = model.PolicyFailed
			return nil, []model.PolicyResult{trustAnchor}, model.Wrap(model.ErrCertPathFailure, "no path to a trusted root", err)
		}
	} else {
		path = paths[0]
	}

	keyUsage := model.PolicyResult{PolicyID: PolicyKeyUsage, Conclusion: model.PolicyPassed}
	if len(leaf.ExtKeyUsage) == 0 {
		keyUsage.Conclusion = model.PolicyFailed
	}

	outcomes := []model.PolicyResult{trustAnchor, keyUsage}

	if revOutcome, ok := v.checkRevocation(ctx, leaf, path, referenceTime); ok {
		outcomes = append(outcomes, revOutcome)
	}

	return path, outcomes, nil
}

// checkRevocation consults the DSS archival first, then falls back to a
// live OCSP/CRL fetch when external checking is enabled. ok is false when
// no revocation information could be obtained at all, in which case the
// caller omits the revocation policy result rather than reporting a
// false pass.
func (v *Validator) checkRevocation(ctx context.Context, cert *x509.Certificate, path []*x509.Certificate, referenceTime time.Time) (model.PolicyResult, bool) {
	result := model.PolicyResult{PolicyID: PolicyRevocation, Conclusion: model.PolicyPassed}

	if v.archival != nil {
		if v.archival.IsRevoked(cert) {
			result.Conclusion = model.PolicyFailed
			return result, true
		}
	}

	if !v.externalRevocation {
		return result, v.archival != nil
	}

	var issuer *x509.Certificate
	if len(path) > 1 {
		issuer = path[1]
	}

	if len(cert.OCSPServer) > 0 && issuer != nil {
		if resp, err := v.fetchOCSP(ctx, cert, issuer); err == nil {
			if resp.Status != ocsp.Good {
				result.Conclusion = model.PolicyFailed
			}
			return result, true
		}
	}

	if len(cert.CRLDistributionPoints) > 0 {
		if revoked, err := v.fetchCRL(ctx, cert); err == nil {
			if revoked {
				result.Conclusion = model.PolicyFailed
			}
			return result, true
		}
	}

	return result, false
}

func (v *Validator) fetchOCSP(ctx context.Context, cert, issuer *x509.Certificate) (*ocsp.Response, error) {
	req, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, serverURL := range cert.OCSPServer {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL, bytes.NewReader(req))
		if err != nil {
			lastErr = err
			continue
		}
		httpReq.Header.Set("Content-Type", "application/ocsp-request")

		resp, err := v.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("OCSP server %s returned status %d", serverURL, resp.StatusCode)
			continue
		}
		ocspResp, err := ocsp.ParseResponse(body, issuer)
		if err != nil {
			lastErr = err
			continue
		}
		return ocspResp, nil
	}
	return nil, lastErr
}

func (v *Validator) fetchCRL(ctx context.Context, cert *x509.Certificate) (bool, error) {
	var lastErr error
	for _, crlURL := range cert.CRLDistributionPoints {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, crlURL, nil)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := v.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("CRL server %s returned status %d", crlURL, resp.StatusCode)
			continue
		}
		crl, err := x509.ParseRevocationList(body)
		if err != nil {
			lastErr = err
			continue
		}
		for _, rc := range crl.RevokedCertificateEntries {
			if rc.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	return false, lastErr
}
