// Package aggregate implements the result aggregator (C8): a pure,
// I/O-free reduction of per-signature results into a whole-document
// verdict.
package aggregate

import "github.com/digitorus/svtvalidate/model"

// Reduce counts signatures and valid signatures and derives the overall
// document status: no-signatures when results is empty, ok when every
// signature succeeded, none-valid when none did, some-invalid otherwise.
func Reduce(results []model.SignatureResult) model.DocumentResult {
	doc := model.DocumentResult{
		Results:        results,
		SignatureCount: len(results),
	}

	if len(results) == 0 {
		doc.Status = model.DocNoSignatures
		return doc
	}

	for _, r := range results {
		if r.Success {
			doc.ValidCount++
		}
	}

	switch {
	case doc.ValidCount == doc.SignatureCount:
		doc.Status = model.DocOK
	case doc.ValidCount == 0:
		doc.Status = model.DocNoneValid
	default:
		doc.Status = model.DocSomeInvalid
	}

	return doc
}
