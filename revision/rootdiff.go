package revision

import (
	"strings"

	"github.com/digitorus/pdf"
	"github.com/digitorus/svtvalidate/model"
)

// toRootValue converts a pdf.Value into the typed comparison
// abstraction described in §4.4. An indirect reference is detected via
// GetPtr(); everything else falls back to the value's own Kind().
func toRootValue(v pdf.Value) model.RootValue {
	if ptr := v.GetPtr(); ptr.GetID() != 0 {
		return model.RootValue{
			Kind: model.RootValueIndirectRef,
			Ref:  model.XrefKey{Number: int(ptr.GetID()), Generation: int(ptr.GetGen())},
		}
	}

	switch v.Kind() {
	case pdf.Dict, pdf.Stream:
		return model.RootValue{Kind: model.RootValueNestedDict}
	case pdf.Name:
		return model.RootValue{Kind: model.RootValueName, Name: v.Name()}
	case pdf.String:
		return model.RootValue{Kind: model.RootValueString, Str: strings.ToLower(v.RawString())}
	case pdf.Array:
		arr := make([]model.RootValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			arr[i] = toRootValue(v.Index(i))
		}
		return model.RootValue{Kind: model.RootValueArray, Array: arr}
	default:
		return model.RootValue{Kind: model.RootValueOther}
	}
}

// rootValuesEqual compares two typed root values. Nested dictionaries
// are equal by presence only - this is deliberately lenient, since
// normal PDF re-serialization otherwise looks indistinguishable from a
// forged catalog entry.
func rootValuesEqual(a, b model.RootValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case model.RootValueNestedDict:
		return true
	case model.RootValueIndirectRef:
		return a.Ref == b.Ref
	case model.RootValueName:
		return a.Name == b.Name
	case model.RootValueString:
		return a.Str == b.Str
	case model.RootValueArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !rootValuesEqual(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default: // RootValueOther
		return false
	}
}

// diffRoots implements the root diffing pass: entries present only in
// the new root go to added, entries whose values differ go to changed,
// and any entry of kind "other" in either dictionary disqualifies the
// revision from being a legal root object.
func diffRoots(oldRoot, newRoot map[string]model.RootValue) (added map[string]bool, changed map[string]bool, legal bool) {
	added = map[string]bool{}
	changed = map[string]bool{}
	legal = true

	for key, nv := range newRoot {
		if nv.Kind == model.RootValueOther {
			legal = false
		}
		ov, present := oldRoot[key]
		if !present {
			added[key] = true
			continue
		}
		if ov.Kind == model.RootValueOther {
			legal = false
		}
		if !rootValuesEqual(ov, nv) {
			changed[key] = true
		}
	}

	return added, changed, legal
}
