package testutil

// Fixed identifiers for deterministic tests. Ids are opaque text.
const (
	TestTenantID      = "00000000-0000-0000-0000-000000000010"
	TestOtherTenantID = "00000000-0000-0000-0000-000000000011"
	TestUnderwriterID = "00000000-0000-0000-0000-000000000001"
	TestProducerID    = "00000000-0000-0000-0000-000000000002"
)
