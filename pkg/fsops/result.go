package fsops

// Kind classifies the outcome of a filesystem operation.
type Kind int

const (
	KindOK Kind = iota
	// KindRepaired means the operation succeeded only after permissions were fixed.
	KindRepaired
	KindNotFound
	KindPermission
	KindExists
	KindDecode
	KindEmpty
	KindInvalid
	KindError
)

var kindNames = map[Kind]string{
	KindOK:         "ok",
	KindRepaired:   "repaired",
	KindNotFound:   "not_found",
	KindPermission: "permission_denied",
	KindExists:     "already_exists",
	KindDecode:     "decode",
	KindEmpty:      "empty",
	KindInvalid:    "invalid",
	KindError:      "error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Result is the outcome of one operation. Message is what the model sees.
type Result struct {
	Kind    Kind
	Message string
}

// Succeeded reports whether the operation achieved its effect.
func (r Result) Succeeded() bool {
	switch r.Kind {
	case KindOK, KindRepaired, KindEmpty:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	return r.Message
}
