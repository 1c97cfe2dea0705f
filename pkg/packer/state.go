package packer

type State int

const (
	Start State = iota
	ManifestLoaded
	SignatureChecked
	Confirmed
	Packed
	Done
	Cancelled
	Failed
)

var stateNames = [...]string{
	Start:            "start",
	ManifestLoaded:   "manifest_loaded",
	SignatureChecked: "signature_checked",
	Confirmed:        "confirmed",
	Packed:           "packed",
	Done:             "done",
	Cancelled:        "cancelled",
	Failed:           "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) Terminal() bool {
	return s == Done || s == Cancelled || s == Failed
}
