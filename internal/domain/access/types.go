package access

// Reason says which tier settled an access decision.
type Reason string

const (
	ReasonAdmin         Reason = "admin"
	ReasonFreeCourse    Reason = "free_course"
	ReasonFreeLesson    Reason = "free_lesson"
	ReasonGlobalPremium Reason = "global_premium"
	ReasonCourseGrant   Reason = "course_grant"
	ReasonDenied        Reason = "denied"
)

type Decision struct {
	Granted bool   `json:"granted"`
	Reason  Reason `json:"reason"`
}

func Grant(r Reason) Decision { return Decision{Granted: true, Reason: r} }

func Deny() Decision { return Decision{Granted: false, Reason: ReasonDenied} }
