package cli

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/digitorus/svtvalidate"
	"github.com/digitorus/svtvalidate/pathvalidator"
)

func ValidateCommand() {
	validateFlags := flag.NewFlagSet("validate", flag.ExitOnError)

	var rootsPath string
	var allowUntrustedRoots bool
	var externalRevocation bool
	var validateTimestampCerts bool
	var httpTimeout time.Duration

	validateFlags.StringVar(&rootsPath, "roots", "", "PEM file of trusted root certificates")
	validateFlags.BoolVar(&allowUntrustedRoots, "allow-untrusted-roots", false, "Allow certificates embedded in the PDF to be used as trust anchors (use with caution)")
	validateFlags.BoolVar(&externalRevocation, "external-revocation", false, "Enable live OCSP/CRL fetches when no embedded revocation information is present")
	validateFlags.BoolVar(&validateTimestampCerts, "validate-timestamp-certs", true, "Validate embedded signature timestamp certificates, not just the content signature's")
	validateFlags.DurationVar(&httpTimeout, "http-timeout", 10*time.Second, "Timeout for external revocation checking requests")

	validateFlags.Usage = func() {
		fmt.Printf("Usage: %s validate [options] <input.pdf>\n\n", os.Args[0])
		fmt.Println("Validate the digital signatures of a PDF file")
		fmt.Println("\nOptions:")
		validateFlags.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Printf("  %s validate document.pdf\n", os.Args[0])
		fmt.Printf("  %s validate -roots ca-bundle.pem document.pdf\n", os.Args[0])
	}

	if err := validateFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse validate flags: %v", err)
	}

	if len(validateFlags.Args()) < 1 {
		validateFlags.Usage()
		osExit(1)
		return
	}

	input := validateFlags.Arg(0)
	ValidatePDF(input, rootsPath, allowUntrustedRoots, externalRevocation, validateTimestampCerts, httpTimeout)
}

func ValidatePDF(input, rootsPath string, allowUntrustedRoots, externalRevocation, validateTimestampCerts bool, httpTimeout time.Duration) {
	pdfBytes, err := os.ReadFile(input)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}

	roots, err := loadRoots(rootsPath)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}

	pv := pathvalidator.New(
		pathvalidator.WithTrustedRoots(roots),
		pathvalidator.WithAllowUntrustedRoots(allowUntrustedRoots),
		pathvalidator.WithExternalRevocationCheck(externalRevocation, &http.Client{Timeout: httpTimeout}),
	)

	validator := svtvalidate.NewValidator(pv, svtvalidate.WithTimestampCertValidation(validateTimestampCerts))

	results, err := validator.Validate(context.Background(), pdfBytes)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}

	doc := svtvalidate.Aggregate(results)

	jsonData, err := json.Marshal(doc)
	if err != nil {
		log.Print(err)
		osExit(1)
		return
	}
	fmt.Println(string(jsonData))
}

// loadRoots reads a PEM bundle of trusted root certificates. An empty
// path yields an empty pool, not the system pool, so that validation
// never silently trusts whatever CAs happen to be installed on the
// machine running the CLI.
func loadRoots(path string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if path == "" {
		return pool, nil
	}
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust roots: %w", err)
	}
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
