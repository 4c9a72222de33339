package bank

// Questionset is a named collection of questions owned by a user.
type Questionset struct {
	HasMetadata

	ID            string
	Title         string
	OwnerID       string
	QuestionCount *int

	// WasRecentlyCreated is set when the value came back from a create call.
	WasRecentlyCreated bool

	questions []*Question
}

// Question is a single assessment item within a question set.
type Question struct {
	HasMetadata

	ID            string
	Text          string
	QuestionsetID string
	OwnerID       string

	// StripMathContainer rewrites math container markup in Text on write.
	StripMathContainer bool

	WasRecentlyCreated bool

	answers []*Answer
}

// Answer is a candidate response to a question.
type Answer struct {
	HasMetadata

	ID         string
	Text       string
	QuestionID string
	IsCorrect  bool

	StripMathContainer bool

	WasRecentlyCreated bool
}

// NewQuestionset returns an unsaved set with no questions.
func NewQuestionset(title, ownerID string) *Questionset {
	return &Questionset{
		Title:     title,
		OwnerID:   ownerID,
		questions: []*Question{},
	}
}

// NewQuestion returns an unsaved question that strips math markup on write.
func NewQuestion(questionsetID, text string) *Question {
	return &Question{
		Text:               text,
		QuestionsetID:      questionsetID,
		StripMathContainer: true,
		answers:            []*Answer{},
	}
}

// NewAnswer returns an unsaved answer that strips math markup on write.
func NewAnswer(questionID, text string, isCorrect bool) *Answer {
	return &Answer{
		Text:               text,
		QuestionID:         questionID,
		IsCorrect:          isCorrect,
		StripMathContainer: true,
	}
}

// Questions returns the hydrated questions; empty when not hydrated.
func (s *Questionset) Questions() []*Question {
	if s.questions == nil {
		return []*Question{}
	}
	return s.questions
}

func (s *Questionset) AddQuestion(q *Question) {
	s.questions = append(s.questions, q)
}

func (s *Questionset) AddQuestions(qs []*Question) {
	for _, q := range qs {
		s.AddQuestion(q)
	}
}

// Answers returns the hydrated answers; empty when not hydrated.
func (q *Question) Answers() []*Answer {
	if q.answers == nil {
		return []*Answer{}
	}
	return q.answers
}

func (q *Question) AddAnswer(a *Answer) {
	q.answers = append(q.answers, a)
}

func (q *Question) AddAnswers(as []*Answer) {
	for _, a := range as {
		q.AddAnswer(a)
	}
}
