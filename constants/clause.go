package constants

// ClauseType is the closed set of clause categories the extractor may emit.
type ClauseType string

const (
	ClauseTermination           ClauseType = "termination"
	ClauseLiability             ClauseType = "liability"
	ClauseIndemnity             ClauseType = "indemnity"
	ClausePayment               ClauseType = "payment"
	ClauseConfidentiality       ClauseType = "confidentiality"
	ClauseIntellectualProperty  ClauseType = "intellectual_property"
	ClauseDisputeResolution     ClauseType = "dispute_resolution"
	ClauseGoverningLaw          ClauseType = "governing_law"
	ClauseForceMajeure          ClauseType = "force_majeure"
	ClauseWarranty              ClauseType = "warranty"
	ClauseLimitationOfLiability ClauseType = "limitation_of_liability"
	ClauseNonCompete            ClauseType = "non_compete"
	ClauseAssignment            ClauseType = "assignment"
	ClauseOther                 ClauseType = "other"
)

var allClauseTypes = []ClauseType{
	ClauseTermination,
	ClauseLiability,
	ClauseIndemnity,
	ClausePayment,
	ClauseConfidentiality,
	ClauseIntellectualProperty,
	ClauseDisputeResolution,
	ClauseGoverningLaw,
	ClauseForceMajeure,
	ClauseWarranty,
	ClauseLimitationOfLiability,
	ClauseNonCompete,
	ClauseAssignment,
	ClauseOther,
}

// ClauseTypeStrings returns the enum as strings, for schema building and prompts.
func ClauseTypeStrings() []string {
	result := make([]string, len(allClauseTypes))
	for i, ct := range allClauseTypes {
		result[i] = string(ct)
	}
	return result
}

// IsClauseType reports whether s is one of the enumerated clause types.
func IsClauseType(s string) bool {
	for _, ct := range allClauseTypes {
		if string(ct) == s {
			return true
		}
	}
	return false
}

// MaxClauseTitleLen bounds the title column and the schema constraint.
const MaxClauseTitleLen = 500
