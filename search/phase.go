package search

// Phase is a step of the per-run lifecycle:
//
//	Idle -> Seeded -> Running -> {Found, Exhausted} -> Draining -> Stopped -> Idle
type Phase int32

const (
	Idle Phase = iota
	Seeded
	Running
	Found
	Exhausted
	Draining
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Seeded:
		return "seeded"
	case Running:
		return "running"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}
