package conversation

// Phase is the coarse stage of the interview.
type Phase string

// Interview phases in order.
const (
	PhaseIntroduction Phase = "introduction"
	PhaseExperience   Phase = "experience"
	PhaseSkills       Phase = "skills"
	PhaseMotivation   Phase = "motivation"
	PhaseClosing      Phase = "closing"
)

// Phases lists every phase in interview order.
var Phases = []Phase{PhaseIntroduction, PhaseExperience, PhaseSkills, PhaseMotivation, PhaseClosing}

// phaseLimits maps the inclusive upper bound of user turns to a phase.
var phaseLimits = []struct {
	maxUserTurns int
	phase        Phase
}{
	{2, PhaseIntroduction},
	{5, PhaseExperience},
	{8, PhaseSkills},
	{11, PhaseMotivation},
}

// PhaseFor derives the phase from the number of user turns.
func PhaseFor(userTurns int) Phase {
	for _, l := range phaseLimits {
		if userTurns <= l.maxUserTurns {
			return l.phase
		}
	}
	return PhaseClosing
}
