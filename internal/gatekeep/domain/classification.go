package domain

// DeviceClass buckets a client device into the three categories the access
// policy cares about.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceOther   DeviceClass = "other"
)

// Software families the policy branches on. Other recognized browsers carry
// their parser name; unrecognized or absent signals resolve to FamilyUnknown.
const (
	FamilyChrome           = "Chrome"
	FamilyEdge             = "Edge"
	FamilyInternetExplorer = "InternetExplorer"
	FamilyUnknown          = "Unknown"

	OSUnknown = "Unknown"
)

// ClientClassification is the per-request breakdown of a raw client identity
// string. Derived once at the request boundary and immutable afterwards.
type ClientClassification struct {
	SoftwareFamily  string
	OperatingSystem string
	DeviceClass     DeviceClass
}
