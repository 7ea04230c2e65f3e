package proc

import (
	"math"
	"strconv"
)

type limitKind uint8

const (
	limitUnknown limitKind = iota // zero value
	limitConcrete
	limitUnlimited
)

// Limit is one bound of a resource limit. A bound is exactly one of a
// concrete value, unlimited, or unknown; the zero value is unknown, so a
// bound that failed to parse can never be mistaken for a configured 0.
type Limit struct {
	kind  limitKind
	value uint64
}

var (
	// Unlimited is the kernel's "unlimited" token.
	Unlimited = Limit{kind: limitUnlimited}

	// Unknown marks a bound that could not be determined.
	Unknown = Limit{}
)

// Concrete returns a Limit holding a configured numeric bound. 0 is a
// meaningful value: the resource is fully denied.
func Concrete(v uint64) Limit { return Limit{kind: limitConcrete, value: v} }

// IsUnlimited reports whether the bound is the kernel's "unlimited".
func (l Limit) IsUnlimited() bool { return l.kind == limitUnlimited }

// IsUnknown reports whether the bound could not be determined.
func (l Limit) IsUnknown() bool { return l.kind == limitUnknown }

// Value returns the concrete bound and whether one is present.
func (l Limit) Value() (uint64, bool) { return l.value, l.kind == limitConcrete }

// Uint64 collapses the bound to a comparable number: the concrete value,
// math.MaxUint64 for unlimited, 0 for unknown. Callers that need to tell the
// three states apart use IsUnlimited/IsUnknown instead.
func (l Limit) Uint64() uint64 {
	switch l.kind {
	case limitUnlimited:
		return math.MaxUint64
	case limitConcrete:
		return l.value
	default:
		return 0
	}
}

func (l Limit) String() string {
	switch l.kind {
	case limitUnlimited:
		return "unlimited"
	case limitConcrete:
		return strconv.FormatUint(l.value, 10)
	default:
		return "unknown"
	}
}

// MarshalJSON renders a concrete bound as a number, unlimited as the string
// "unlimited", and unknown as null.
func (l Limit) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case limitUnlimited:
		return []byte(`"unlimited"`), nil
	case limitConcrete:
		return []byte(strconv.FormatUint(l.value, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// Rlimit is the (soft, hard) pair of one limit line, in the limit's native
// units. Soft <= hard is kernel-enforced and not re-checked here.
type Rlimit struct {
	Soft Limit `json:"soft"`
	Hard Limit `json:"hard"`
}
