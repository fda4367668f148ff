package models

// QuestionID identifies one onboarding question.
type QuestionID string

const (
	QuestionName            QuestionID = "name"
	QuestionDissatisfaction QuestionID = "dissatisfaction"
	QuestionComplaint       QuestionID = "complaint"
	QuestionFiveYears       QuestionID = "five_years"
	QuestionIdealLife       QuestionID = "ideal_life"
	QuestionIdentity        QuestionID = "identity"
	QuestionBiggestGoal     QuestionID = "biggest_goal"
)

// Profile is the durable per-user state. CurrentStreak is derived and is
// recomputed from entries whenever the profile is loaded.
type Profile struct {
	TotalEntries       int                   `json:"totalEntries"`
	CurrentStreak      int                   `json:"currentStreak"`
	Patterns           []string              `json:"patterns"`
	Goals              []string              `json:"goals"`
	OnboardingComplete bool                  `json:"onboardingComplete"`
	OnboardingData     map[QuestionID]string `json:"onboardingData"`
}

// NewProfile returns the zero-valued profile of a new user.
func NewProfile() Profile {
	return Profile{
		Patterns:       []string{},
		Goals:          []string{},
		OnboardingData: map[QuestionID]string{},
	}
}

// Normalize replaces nil collections left by older or hand-edited records.
func (p *Profile) Normalize() {
	if p.Patterns == nil {
		p.Patterns = []string{}
	}
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.OnboardingData == nil {
		p.OnboardingData = map[QuestionID]string{}
	}
	if p.TotalEntries < 0 {
		p.TotalEntries = 0
	}
}

// Answer returns the onboarding answer for id, or fallback when unset.
func (p Profile) Answer(id QuestionID, fallback string) string {
	if v, ok := p.OnboardingData[id]; ok && v != "" {
		return v
	}
	return fallback
}

// Name is the user's preferred name, empty when unknown.
func (p Profile) Name() string {
	return p.OnboardingData[QuestionName]
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (p Profile) Clone() Profile {
	c := p
	c.Patterns = append([]string{}, p.Patterns...)
	c.Goals = append([]string{}, p.Goals...)
	c.OnboardingData = make(map[QuestionID]string, len(p.OnboardingData))
	for k, v := range p.OnboardingData {
		c.OnboardingData[k] = v
	}
	return c
}
