// Package stage maps the feed's free-text lifecycle labels onto the
// canonical stage codes used in Salesforce.
package stage

// Canonical stage codes.
const (
	CodeBidDateSet          = "Bid Date Set"
	CodeOpenBid             = "OB"
	CodeLowBidApparent      = "LBA"
	CodeGCAward             = "AGC"
	CodePostBid             = "PB"
	CodeGeneralContract     = "GC"
	CodeConstructionManager = "CM"
	CodeConstructionDocs    = "CD"
)

// aliases is the fixed crosswalk from feed stage labels to canonical codes.
// Matching is exact and case-sensitive; the labels come from the feed
// vendor's own enumeration, not user input.
var aliases = map[string]string{
	"Pre-Bid":            CodeBidDateSet,
	"Bid Date Set":       CodeBidDateSet,
	"Biddate Set":        CodeBidDateSet,
	"Schematic Design":   CodeBidDateSet,
	"Design Development": CodeBidDateSet,

	"Open Bid":      CodeOpenBid,
	"SUBBIDS: ASAP": CodeOpenBid,

	"Low Bid Apparent":   CodeLowBidApparent,
	"Low Bid / Apparent": CodeLowBidApparent,
	"Low Bids Announced": CodeLowBidApparent,

	"Post-Bid - General Contractor Award": CodeGCAward,
	"Architectural General Contracting":   CodeGCAward,
	"General Contractor Award":            CodeGCAward,

	"Post Bid": CodePostBid,

	"General Contract":      CodeGeneralContract,
	"Construction Underway": CodeGeneralContract,

	"Construction Manager": CodeConstructionManager,

	"Construction Documents": CodeConstructionDocs,
	"Pre-Design":             CodeConstructionDocs,
}

// Canonicalize maps a raw stage label to its canonical code. Labels outside
// the crosswalk pass through unchanged, as does an absent label.
func Canonicalize(raw *string) *string {
	if raw == nil {
		return nil
	}
	if code, ok := aliases[*raw]; ok {
		return &code
	}
	return raw
}
