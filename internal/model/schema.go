package model

// Element type tags as carried by the schema definitions.
const (
	ElementTypeDate         = "DT"
	ElementTypeTime         = "TM"
	ElementTypeNumeric      = "N0" // whole number, implied zero decimals
	ElementTypeDecimal      = "N2" // implied two decimals
	ElementTypeReal         = "R"
	ElementTypeIdentifier   = "ID"
	ElementTypeAlphanumeric = "AN"
)

// Requirement designators.
const (
	RequirementMandatory = "M"
	RequirementOptional  = "O"
)

// ElementSpec describes one positional element within a segment layout.
type ElementSpec struct {
	ElementID        string
	Description      string
	Requirement      string
	Type             string
	CompositeElement string
	Position         int
	MinimumLength    int
	MaximumLength    int
}

// Mandatory reports whether the element carries the mandatory designator.
func (e ElementSpec) Mandatory() bool {
	return e.Requirement == RequirementMandatory
}

// SegmentUsage is one entry in a document type's ordered segment listing.
type SegmentUsage struct {
	SegmentID         string
	Requirement       string
	LoopID            string
	Section           string
	Position          int
	MaximumUsage      int
	MaximumLoopRepeat int
}

// DocumentProfile identifies one inbound document and the schema namespace
// its output must follow.
type DocumentProfile struct {
	InterchangeSender string
	DocumentID        string
	Standard          string // e.g. "EDI/X12", "EDIFACT"
	Version           string // e.g. "004010"
	TransactionSetID  string // e.g. "810"
}
