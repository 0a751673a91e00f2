// Package revision implements the PDF revision analyzer (C4): discovering
// every incremental-update revision of a PDF, diffing their cross-
// reference tables and catalog dictionaries, and classifying each
// revision as safe or unsafe with respect to a signature's coverage of
// the visible document.
package revision

import (
	"bytes"

	"github.com/digitorus/svtvalidate/model"
)

var eofMarker = []byte("%%EOF")

// discoverLengths scans the PDF bytes backward locating every %%EOF
// marker; each marker ends one revision (the length includes the
// trailing newline, matched loosely by scanning to the next line break
// or end of buffer). Iteration stops at the first %%EOF encountered
// while scanning backward, i.e. the earliest revision in the file.
func discoverLengths(pdfBytes []byte) []int64 {
	var lengths []int64
	search := pdfBytes
	base := int64(0)
	for {
		idx := bytes.LastIndex(search, eofMarker)
		if idx < 0 {
			break
		}
		end := idx + len(eofMarker)
		// Absorb a single trailing CR/LF pair, matching how writers
		// terminate the %%EOF line.
		for end < len(search) && (search[end] == '\r' || search[end] == '\n') {
			end++
			break
		}
		length := base + int64(end)
		lengths = append(lengths, length)
		search = search[:idx]
	}
	// lengths were collected from the last revision to the first;
	// reverse into document (creation) order.
	for i, j := 0, len(lengths)-1; i < j; i, j = i+1, j-1 {
		lengths[i], lengths[j] = lengths[j], lengths[i]
	}
	return lengths
}

// Analyze reconstructs every revision of pdfBytes, in document order,
// with xref/root deltas and safe/valid_dss/safe_update classification
// fully populated. Revisions that fail to re-parse as a complete PDF are
// discarded, per §4.4.
func Analyze(pdfBytes []byte) ([]model.Revision, error) {
	lengths := discoverLengths(pdfBytes)
	if len(lengths) == 0 {
		return nil, model.New(model.ErrBadPDF, "no %%EOF marker found")
	}

	var revisions []model.Revision
	for _, length := range lengths {
		if length > int64(len(pdfBytes)) {
			length = int64(len(pdfBytes))
		}
		prefix := pdfBytes[:length]

		rev, err := parseRevision(prefix)
		if err != nil {
			continue // discard revisions that fail to parse, per §4.4
		}
		rev.Length = length
		revisions = append(revisions, rev)
	}

	if len(revisions) == 0 {
		return nil, model.New(model.ErrBadPDF, "no revision of the document could be parsed")
	}

	populateDeltas(revisions)
	classify(revisions)

	return revisions, nil
}

// CoversDocument implements §4.4's coverage rule: a signature at
// revision index i covers the document iff every later revision is a
// safe_update.
func CoversDocument(revisions []model.Revision, signatureRevisionIndex int) bool {
	for i := signatureRevisionIndex + 1; i < len(revisions); i++ {
		if !revisions[i].SafeUpdate {
			return false
		}
	}
	return true
}

// SignedDocument extracts the byte prefix signature S actually signed:
// the document as it existed before S's revision was applied.
func SignedDocument(pdfBytes []byte, revisions []model.Revision, signatureRevisionIndex int) ([]byte, error) {
	if signatureRevisionIndex <= 0 {
		return nil, model.New(model.ErrNoPriorRevision, "signature has no prior revision")
	}
	priorLength := revisions[signatureRevisionIndex-1].Length
	if priorLength > int64(len(pdfBytes)) {
		return nil, model.New(model.ErrBadPDF, "prior revision length exceeds document size")
	}
	return pdfBytes[:priorLength], nil
}

// RevisionForByteRangeLength finds the revision whose length equals
// b+c, the end of a signature's byte range, per §4.4: that revision is
// the one in which the signature was applied.
func RevisionForByteRangeLength(revisions []model.Revision, totalLength int64) (int, bool) {
	for i, r := range revisions {
		if r.Length == totalLength {
			return i, true
		}
	}
	return -1, false
}
