package solverlog

// Status is the outcome reported on the status line of a solver log. It is a
// lifted boolean: a run either found a solution (True), proved there is none
// (False), or was stopped before it could tell (Aborted).
type Status int8

const (
	Aborted Status = 0
	True    Status = 1
	False   Status = -1
)

// ParseStatus returns the status corresponding to the given status value.
// Anything other than "true" or "false" is considered aborted.
func ParseStatus(s string) Status {
	switch s {
	case "true":
		return True
	case "false":
		return False
	default:
		return Aborted
	}
}

func (s Status) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "aborted"
	}
}
