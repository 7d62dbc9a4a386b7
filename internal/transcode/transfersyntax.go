package transcode

// Transfer syntax UIDs the platform cares about.
const (
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian    = "1.2.840.10008.1.2.2"
	RLELossless            = "1.2.840.10008.1.2.5"
	JPEG2000Lossless       = "1.2.840.10008.1.2.4.90"
	JPEG2000               = "1.2.840.10008.1.2.4.91"
)

// cornerstoneSupported lists the transfer syntaxes a cornerstone-based
// browser viewer decodes directly. Instances stored in anything else are
// transcoded before a viewer sees them.
var cornerstoneSupported = map[string]struct{}{
	"1.2.840.10008.1.2":         {},
	"1.2.840.10008.1.2.1":       {},
	"1.2.840.10008.1.2.2":       {},
	"1.2.840.10008.1.2.1.99":    {},
	"1.2.840.10008.1.2.5":       {},
	"1.2.840.10008.1.2.4.50":    {},
	"1.2.840.10008.1.2.4.51":    {},
	"1.2.840.10008.1.2.4.57":    {},
	"1.2.840.10008.1.2.4.70":    {},
	"1.2.840.10008.1.2.4.80":    {},
	"1.2.840.10008.1.2.4.81":    {},
	"1.2.840.10008.1.2.4.90":    {},
	"1.2.840.10008.1.2.4.91":    {},
	"1.2.840.10008.1.2.4.96":    {},
	"1.2.840.10008.1.2.4.201":   {},
	"1.2.840.10008.1.2.4.202":   {},
	"1.2.840.10008.1.2.4.203":   {},
}

// IsCornerstoneSupported reports whether uid is directly viewable.
func IsCornerstoneSupported(uid string) bool {
	_, ok := cornerstoneSupported[uid]
	return ok
}
