package session

import "lifelens/internal/diagnosis"

// Snapshot is an immutable view of the machine state.
type Snapshot struct {
	Phase        Phase
	Input        Input
	Diagnosis    diagnosis.Diagnosis
	ErrorMessage string
	DemoActive   bool
	Generation   uint64
	Guide        StepGuide
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:        m.phase,
		Input:        m.input,
		Diagnosis:    m.result,
		ErrorMessage: m.errMessage,
		DemoActive:   m.demo.Load(),
		Generation:   m.generation,
		Guide:        m.guide,
	}
}

// GuidanceAllowed reports whether step-by-step repair guidance may be shown
// for the current diagnosis.
func (s Snapshot) GuidanceAllowed() bool {
	repair, ok := s.Diagnosis.(*diagnosis.Repair)
	return ok && repair.GuidanceAllowed()
}
