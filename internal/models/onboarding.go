package models

// OnboardingQuestion is one fixed step of the onboarding interview.
type OnboardingQuestion struct {
	ID          QuestionID
	Question    string
	Placeholder string
	Context     string
}

// OnboardingQuestions is the ordered interview. It is read-only.
var OnboardingQuestions = []OnboardingQuestion{
	{
		ID:          QuestionName,
		Question:    "What should I call you?",
		Placeholder: "Your name...",
		Context:     "I want to know who I'm speaking with.",
	},
	{
		ID:          QuestionDissatisfaction,
		Question:    "What's the dull, persistent dissatisfaction you've learned to live with?",
		Placeholder: "The thing you tolerate but secretly hate...",
		Context:     "Not the deep suffering, but what you've accepted as normal.",
	},
	{
		ID:          QuestionComplaint,
		Question:    "What do you complain about most, but never actually change?",
		Placeholder: "That one thing you keep talking about...",
		Context:     "Your actions reveal what you actually want.",
	},
	{
		ID:          QuestionFiveYears,
		Question:    "If nothing changes in 5 years, what does your average Tuesday look like?",
		Placeholder: "Be brutally honest...",
		Context:     "This is your anti-vision. The life you're running from.",
	},
	{
		ID:          QuestionIdealLife,
		Question:    "Forget practicality. What does your ideal Tuesday look like in 3 years?",
		Placeholder: "What you actually want...",
		Context:     "This is your vision. Where you're headed.",
	},
	{
		ID:          QuestionIdentity,
		Question:    "Complete this: 'I am the type of person who...'",
		Placeholder: "Who are you becoming?",
		Context:     "This is the identity that makes your vision natural.",
	},
	{
		ID:          QuestionBiggestGoal,
		Question:    "What's the one thing that, if you achieved it this year, would change everything?",
		Placeholder: "Your mission...",
		Context:     "This becomes your north star.",
	},
}

// IsQuestionID reports whether id names one of the onboarding questions.
func IsQuestionID(id QuestionID) bool {
	for _, q := range OnboardingQuestions {
		if q.ID == id {
			return true
		}
	}
	return false
}
