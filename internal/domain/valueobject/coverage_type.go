package valueobject

// CoverageType is a line of commercial insurance requested on a submission.
type CoverageType struct {
	value    string
	property bool
}

var (
	CoverageTypeGeneralLiability      = CoverageType{value: "GENERAL_LIABILITY"}
	CoverageTypeProperty              = CoverageType{value: "PROPERTY", property: true}
	CoverageTypeWorkersCompensation   = CoverageType{value: "WORKERS_COMPENSATION"}
	CoverageTypeCommercialAuto        = CoverageType{value: "COMMERCIAL_AUTO"}
	CoverageTypeUmbrella              = CoverageType{value: "UMBRELLA"}
	CoverageTypeProfessionalLiability = CoverageType{value: "PROFESSIONAL_LIABILITY"}
	CoverageTypeCyber                 = CoverageType{value: "CYBER"}
	CoverageTypeInlandMarine          = CoverageType{value: "INLAND_MARINE", property: true}
	CoverageTypeBuildersRisk          = CoverageType{value: "BUILDERS_RISK", property: true}
	CoverageTypeBusinessOwners        = CoverageType{value: "BUSINESS_OWNERS", property: true}
)

var coverageTypes = newLookup("coverage type",
	CoverageTypeGeneralLiability,
	CoverageTypeProperty,
	CoverageTypeWorkersCompensation,
	CoverageTypeCommercialAuto,
	CoverageTypeUmbrella,
	CoverageTypeProfessionalLiability,
	CoverageTypeCyber,
	CoverageTypeInlandMarine,
	CoverageTypeBuildersRisk,
	CoverageTypeBusinessOwners,
)

// NewCoverageType resolves a CoverageType by value or name.
func NewCoverageType(s string) (CoverageType, error) {
	return coverageTypes.parse(s)
}

// String returns the canonical value.
func (c CoverageType) String() string { return c.value }

// IsZero returns true if the coverage type has not been initialised.
func (c CoverageType) IsZero() bool { return c.value == "" }

// Equal returns true when both coverage types carry the same value.
func (c CoverageType) Equal(other CoverageType) bool { return c.value == other.value }

// IsPropertyType reports whether the line insures scheduled physical locations.
func (c CoverageType) IsPropertyType() bool { return c.property }
