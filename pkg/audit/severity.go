package audit

// Severity classifies how close a usage figure sits to its hard limit. The
// zero value is Unknown, so a dimension that was never evaluated can't read
// as healthy.
type Severity uint8

const (
	Unknown Severity = iota
	OK
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "ok"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity name, for JSON and text output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// rank orders severities for Worst: critical > warning > unknown > ok.
// Unknown outranks OK: a dimension that could not be judged deserves more
// attention than one judged healthy.
func (s Severity) rank() int {
	switch s {
	case Critical:
		return 3
	case Warning:
		return 2
	case Unknown:
		return 1
	default:
		return 0
	}
}
