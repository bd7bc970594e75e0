package reconcile

// MergeDescriptions combines the canonical-store description and the
// tag-store description for the same table or field into one string.
//
// The canonical store enforces a hard length cap (canonicalMax). When its
// copy sits exactly at that cap it is treated as evidence of upstream
// truncation, and the tail of the longer tag-store copy beyond the cap is
// appended to recover the content the canonical store could not hold.
// Otherwise the longer copy wins, with the canonical copy authoritative on
// ties and whenever the tag-store copy is shorter.
//
// The policy is asymmetric and order-sensitive; exactly one branch applies
// for any input pair.
func MergeDescriptions(canonical, tagged string, canonicalMax int) string {
	switch {
	case tagged == "":
		return canonical
	case canonical == "":
		return tagged
	case len(tagged) < len(canonical):
		return canonical
	case len(canonical) == canonicalMax:
		if len(tagged) > canonicalMax {
			return canonical + tagged[canonicalMax:]
		}
		return canonical
	default:
		return tagged
	}
}
