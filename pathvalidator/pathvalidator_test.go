package pathvalidator

import (
	"context"
	"crypto/x509"
	"testing"
	"time"

	"github.com/digitorus/svtvalidate/internal/testpki"
	"github.com/digitorus/svtvalidate/model"
	"github.com/digitorus/svtvalidate/revocation"
)

func rootPool(pki *testpki.TestPKI) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(pki.RootCert)
	return pool
}

func policyConclusion(results []model.PolicyResult, id string) (model.PolicyOutcome, bool) {
	for _, r := range results {
		if r.PolicyID == id {
			return r.Conclusion, true
		}
	}
	return 0, false
}

func TestValidatePath_TrustedChain(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	defer pki.Close()
	pki.StartCRLServer()
	_, leaf := pki.IssueLeaf("signer")

	v := New(WithTrustedRoots(rootPool(pki)))

	path, results, err := v.ValidatePath(context.Background(), leaf, pki.Chain(), time.Now())
	if err != nil {
		t.Fatalf("ValidatePath failed: %v", err)
	}
	if len(path) == 0 {
		t.Fatal("expected a non-empty certificate path")
	}

	if c, ok := policyConclusion(results, PolicyTrustAnchor); !ok || c != model.PolicyPassed {
		t.Errorf("trust-anchor conclusion = %v, ok=%v, want passed", c, ok)
	}
}

func TestValidatePath_UntrustedRootsRejectedByDefault(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	defer pki.Close()
	pki.StartCRLServer()
	_, leaf := pki.IssueLeaf("signer")

	v := New() // no trusted roots, no allow-untrusted fallback

	_, results, err := v.ValidatePath(context.Background(), leaf, pki.Chain(), time.Now())
	if err == nil {
		t.Fatal("expected an error when no trust anchor is configured")
	}
	if c, ok := policyConclusion(results, PolicyTrustAnchor); !ok || c != model.PolicyFailed {
		t.Errorf("trust-anchor conclusion = %v, ok=%v, want failed", c, ok)
	}
}

func TestValidatePath_AllowUntrustedRootsFallsBack(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	defer pki.Close()
	pki.StartCRLServer()
	_, leaf := pki.IssueLeaf("signer")

	v := New(WithAllowUntrustedRoots(true))

	path, results, err := v.ValidatePath(context.Background(), leaf, pki.Chain(), time.Now())
	if err != nil {
		t.Fatalf("ValidatePath failed: %v", err)
	}
	if len(path) == 0 {
		t.Fatal("expected a non-empty certificate path")
	}
	if c, ok := policyConclusion(results, PolicyTrustAnchor); !ok || c != model.PolicyIndeterminate {
		t.Errorf("trust-anchor conclusion = %v, ok=%v, want indeterminate", c, ok)
	}
}

func TestValidatePath_RevocationFromArchival(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	defer pki.Close()
	pki.StartCRLServer()

	_, leaf := pki.IssueLeaf("signer")
	leaf.SerialNumber.SetInt64(9999)

	archival := &revocation.InfoArchival{}
	if err := archival.AddCRL(pki.CRLBytes); err != nil {
		t.Fatalf("AddCRL failed: %v", err)
	}
	v := New(WithTrustedRoots(rootPool(pki)), WithRevocationArchival(archival))

	_, results, err := v.ValidatePath(context.Background(), leaf, pki.Chain(), time.Now())
	if err != nil {
		t.Fatalf("ValidatePath failed: %v", err)
	}
	if c, ok := policyConclusion(results, PolicyRevocation); !ok || c != model.PolicyFailed {
		t.Errorf("revocation conclusion = %v, ok=%v, want failed", c, ok)
	}
}

func TestValidatePath_NoRevocationInfoOmitsPolicy(t *testing.T) {
	pki := testpki.NewTestPKI(t)
	defer pki.Close()
	pki.StartCRLServer()
	_, leaf := pki.IssueLeaf("signer")

	v := New(WithTrustedRoots(rootPool(pki)))

	_, results, err := v.ValidatePath(context.Background(), leaf, pki.Chain(), time.Now())
	if err != nil {
		t.Fatalf("ValidatePath failed: %v", err)
	}
	if _, ok := policyConclusion(results, PolicyRevocation); ok {
		t.Error("expected no revocation policy result when no revocation information is configured")
	}
}
