package models

import "fmt"

type QuestionType string

const (
	Choice     QuestionType = "Choice"
	Multiple   QuestionType = "Multiple"
	Reorder    QuestionType = "Reorder"
	FillGap    QuestionType = "FillGap"
	Categorize QuestionType = "Categorize"
)

// AllQuestionTypes lists every supported variant, in display order.
var AllQuestionTypes = []QuestionType{Choice, Multiple, Reorder, FillGap, Categorize}

func (t QuestionType) IsValid() bool {
	switch t {
	case Choice, Multiple, Reorder, FillGap, Categorize:
		return true
	}
	return false
}

// APIType is the stable wire tag the course platform expects for each variant.
func (t QuestionType) APIType() string {
	switch t {
	case Choice:
		return "choice"
	case Multiple:
		return "multiple"
	case Reorder:
		return "reorder"
	case FillGap:
		return "fill_gap"
	case Categorize:
		return "categorize"
	default:
		return ""
	}
}

// Title is the human-readable variant name shown in the editor and sent as
// the question's category label on the wire.
func (t QuestionType) Title() string {
	switch t {
	case Choice:
		return "Single choice"
	case Multiple:
		return "Multiple choice"
	case Reorder:
		return "Reorder"
	case FillGap:
		return "Fill the gap"
	case Categorize:
		return "Categorize"
	default:
		return string(t)
	}
}

// QuestionTypeFromAPI resolves a wire tag back to its variant.
func QuestionTypeFromAPI(apiType string) (QuestionType, bool) {
	for _, t := range AllQuestionTypes {
		if t.APIType() == apiType {
			return t, true
		}
	}
	return "", false
}

// MinEntries is the minimum-cardinality floor enforced by editing operations:
// Choice/Multiple never drop below 2 answers, Reorder below 2 items,
// FillGap below 1 answer, Categorize below 1 category.
func (t QuestionType) MinEntries() int {
	switch t {
	case Choice, Multiple, Reorder:
		return 2
	case FillGap, Categorize:
		return 1
	default:
		return 0
	}
}

// QuestionContent is the variant-specific payload of a question draft.
// Exactly one concrete type exists per QuestionType; payload shapes are
// incompatible across variants, so switching the type replaces the payload.
type QuestionContent interface {
	Type() QuestionType
}

type ChoiceContent struct {
	Answers        []string `json:"answers"`
	CorrectAnswers []int    `json:"correct_answers"`
}

func (ChoiceContent) Type() QuestionType { return Choice }

type MultipleContent struct {
	Answers        []string `json:"answers"`
	CorrectAnswers []int    `json:"correct_answers"`
}

func (MultipleContent) Type() QuestionType { return Multiple }

type ReorderContent struct {
	Items []string `json:"items"`
}

func (ReorderContent) Type() QuestionType { return Reorder }

type FillGapContent struct {
	Answers []string `json:"answers"`
}

func (FillGapContent) Type() QuestionType { return FillGap }

type Category struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type CategorizeContent struct {
	Categories []Category `json:"categories"`
}

func (CategorizeContent) Type() QuestionType { return Categorize }

// DefaultContent builds the empty payload a freshly created (or type-switched)
// question starts from. Slot counts match each variant's cardinality floor.
func DefaultContent(t QuestionType) (QuestionContent, error) {
	switch t {
	case Choice:
		return &ChoiceContent{Answers: []string{"", ""}, CorrectAnswers: []int{}}, nil
	case Multiple:
		return &MultipleContent{Answers: []string{"", ""}, CorrectAnswers: []int{}}, nil
	case Reorder:
		return &ReorderContent{Items: []string{"", ""}}, nil
	case FillGap:
		return &FillGapContent{Answers: []string{""}}, nil
	case Categorize:
		return &CategorizeContent{Categories: []Category{{Name: "", Items: []string{""}}}}, nil
	default:
		return nil, fmt.Errorf("unsupported question type: %s", t)
	}
}
