package valueobject

// ---------------------------------------------------------------------------
// LossStatus
// ---------------------------------------------------------------------------

// LossStatus is the claim state of a historical loss.
type LossStatus struct {
	value string
}

var (
	LossStatusOpen     = LossStatus{value: "OPEN"}
	LossStatusClosed   = LossStatus{value: "CLOSED"}
	LossStatusReopened = LossStatus{value: "REOPENED"}
)

var lossStatuses = newLookup("loss status", LossStatusOpen, LossStatusClosed, LossStatusReopened)

// NewLossStatus resolves a LossStatus by value or name.
func NewLossStatus(s string) (LossStatus, error) { return lossStatuses.parse(s) }

func (s LossStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LossStatus) IsZero() bool { return s.value == "" }

// IsOpen is true for Open and Reopened claims.
func (s LossStatus) IsOpen() bool { return s == LossStatusOpen || s == LossStatusReopened }

// ---------------------------------------------------------------------------
// ConstructionType (ISO construction classes)
// ---------------------------------------------------------------------------

// ConstructionType is the ISO construction class of a building.
type ConstructionType struct {
	value string
}

var (
	ConstructionFrame                 = ConstructionType{value: "FRAME"}
	ConstructionJoistedMasonry        = ConstructionType{value: "JOISTED_MASONRY"}
	ConstructionNonCombustible        = ConstructionType{value: "NON_COMBUSTIBLE"}
	ConstructionMasonryNonCombustible = ConstructionType{value: "MASONRY_NON_COMBUSTIBLE"}
	ConstructionModifiedFireResistive = ConstructionType{value: "MODIFIED_FIRE_RESISTIVE"}
	ConstructionFireResistive         = ConstructionType{value: "FIRE_RESISTIVE"}
)

var constructionTypes = newLookup("construction type",
	ConstructionFrame,
	ConstructionJoistedMasonry,
	ConstructionNonCombustible,
	ConstructionMasonryNonCombustible,
	ConstructionModifiedFireResistive,
	ConstructionFireResistive,
)

// NewConstructionType resolves a ConstructionType by value or name.
func NewConstructionType(s string) (ConstructionType, error) { return constructionTypes.parse(s) }

func (c ConstructionType) String() string { return c.value }

// IsZero returns true if the construction type has not been set.
func (c ConstructionType) IsZero() bool { return c.value == "" }
