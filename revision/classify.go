package revision

import "github.com/digitorus/svtvalidate/model"

// populateDeltas computes, for every revision after the first, the xref
// and root-dictionary deltas against the immediately preceding revision.
func populateDeltas(revisions []model.Revision) {
	for i := 1; i < len(revisions); i++ {
		prev := revisions[i-1]
		cur := &revisions[i]

		cur.ChangedXref = map[model.XrefKey]bool{}
		cur.AddedXref = map[model.XrefKey]bool{}

		for key, offset := range cur.XrefTable {
			prevOffset, existed := prev.XrefTable[key]
			if !existed {
				cur.AddedXref[key] = true
				continue
			}
			if prevOffset != offset {
				cur.ChangedXref[key] = true
			}
		}

		cur.RootUpdate = cur.ChangedXref[cur.RootObjectID]
		cur.NonRootUpdate = false
		for key := range cur.ChangedXref {
			if key != cur.RootObjectID {
				cur.NonRootUpdate = true
				break
			}
		}

		if cur.RootUpdate {
			added, changed, legal := diffRoots(prev.RootObject, cur.RootObject)
			cur.AddedRootItems = added
			cur.ChangedRootItems = changed
			cur.LegalRootObject = legal
		} else {
			cur.AddedRootItems = map[string]bool{}
			cur.ChangedRootItems = map[string]bool{}
			cur.LegalRootObject = true
		}
	}
}

// classify computes valid_dss for every revision. safe_update is
// finalized separately, once a revision's is_signature/is_doc_timestamp
// flags are known - see FinalizeSafety.
func classify(revisions []model.Revision) {
	for i := range revisions {
		revisions[i].ValidDSS = computeValidDSS(revisions[i])
	}
}

func computeValidDSS(r model.Revision) bool {
	if !r.RootUpdate || r.NonRootUpdate || !r.LegalRootObject {
		return false
	}
	if len(r.ChangedRootItems) != 0 {
		return false
	}
	return len(r.AddedRootItems) == 1 && r.AddedRootItems["DSS"]
}

// nonDSSOrAcroForm reports whether any added root item is something
// other than /DSS or /AcroForm.
func nonDSSOrAcroForm(r model.Revision) bool {
	for item := range r.AddedRootItems {
		if item != "DSS" && item != "AcroForm" {
			return true
		}
	}
	return false
}

func computeSafeUpdate(r model.Revision) bool {
	if r.NonRootUpdate || !r.LegalRootObject || len(r.ChangedRootItems) != 0 {
		return false
	}
	if !(r.IsSignature || r.IsDocTimestamp || r.ValidDSS) {
		return false
	}
	return !nonDSSOrAcroForm(r)
}

// FinalizeSafety recomputes safe_update for every revision. Call this
// once all signature classifications (IsSignature/IsDocTimestamp) have
// been assigned by the signature verifier walking the document's
// signature dictionaries.
func FinalizeSafety(revisions []model.Revision) {
	for i := range revisions {
		revisions[i].SafeUpdate = computeSafeUpdate(revisions[i])
	}
}

// MarkSignature records that the revision at index idx is the one in
// which a signature (content signature or document timestamp) was
// applied.
func MarkSignature(revisions []model.Revision, idx int, isDocTimestamp bool) {
	if idx < 0 || idx >= len(revisions) {
		return
	}
	revisions[idx].IsSignature = true
	if isDocTimestamp {
		revisions[idx].IsDocTimestamp = true
	}
}
