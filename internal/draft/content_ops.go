package draft

import "github.com/coursekit/quiz-authoring-service/internal/models"

// Per-variant sub-operations. Each maintains the variant's minimum-cardinality
// floor: a removal that would drop below the floor returns false and leaves
// the payload untouched. Operations against the wrong variant or an unknown
// local id are no-ops.

// answersOf returns the answer slice held by Choice, Multiple and FillGap
// payloads, which share the answers+sub-operation surface.
func answersOf(q *models.QuestionDraft) *[]string {
	switch c := q.Content.(type) {
	case *models.ChoiceContent:
		return &c.Answers
	case *models.MultipleContent:
		return &c.Answers
	case *models.FillGapContent:
		return &c.Answers
	}
	return nil
}

func (s *Store) AddAnswer(localID string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		if answers := answersOf(q); answers != nil {
			*answers = append(*answers, "")
		}
	})
}

func (s *Store) SetAnswer(localID string, index int, text string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		answers := answersOf(q)
		if answers == nil || index < 0 || index >= len(*answers) {
			return
		}
		(*answers)[index] = text
	})
}

// RemoveAnswer drops the answer row at index. Indexes in the correct-answer
// set are remapped so remaining selections keep pointing at the same rows.
func (s *Store) RemoveAnswer(localID string, index int) bool {
	removed := false
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		answers := answersOf(q)
		if answers == nil || index < 0 || index >= len(*answers) {
			return
		}
		if len(*answers) <= q.Type.MinEntries() {
			return
		}
		*answers = append((*answers)[:index], (*answers)[index+1:]...)
		switch c := q.Content.(type) {
		case *models.ChoiceContent:
			c.CorrectAnswers = remapCorrect(c.CorrectAnswers, index)
		case *models.MultipleContent:
			c.CorrectAnswers = remapCorrect(c.CorrectAnswers, index)
		}
		removed = true
	})
	return removed
}

func remapCorrect(correct []int, removed int) []int {
	out := correct[:0]
	for _, i := range correct {
		switch {
		case i == removed:
		case i > removed:
			out = append(out, i-1)
		default:
			out = append(out, i)
		}
	}
	return out
}

// SetCorrectAnswers replaces the correct-answer selection for Choice and
// Multiple questions. Out-of-range indexes are discarded; for Choice only the
// first surviving index is kept, since exactly one answer may be correct.
func (s *Store) SetCorrectAnswers(localID string, indexes []int) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		switch c := q.Content.(type) {
		case *models.ChoiceContent:
			valid := filterIndexes(indexes, len(c.Answers))
			if len(valid) > 1 {
				valid = valid[:1]
			}
			c.CorrectAnswers = valid
		case *models.MultipleContent:
			c.CorrectAnswers = filterIndexes(indexes, len(c.Answers))
		}
	})
}

func filterIndexes(indexes []int, limit int) []int {
	out := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if i >= 0 && i < limit {
			out = append(out, i)
		}
	}
	return out
}

// ===== REORDER SUB-OPERATIONS =====

func (s *Store) AddItem(localID string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		if c, ok := q.Content.(*models.ReorderContent); ok {
			c.Items = append(c.Items, "")
		}
	})
}

func (s *Store) SetItem(localID string, index int, text string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.ReorderContent)
		if !ok || index < 0 || index >= len(c.Items) {
			return
		}
		c.Items[index] = text
	})
}

func (s *Store) RemoveItem(localID string, index int) bool {
	removed := false
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.ReorderContent)
		if !ok || index < 0 || index >= len(c.Items) {
			return
		}
		if len(c.Items) <= q.Type.MinEntries() {
			return
		}
		c.Items = append(c.Items[:index], c.Items[index+1:]...)
		removed = true
	})
	return removed
}

// MoveItem shifts an item to a new position. For Reorder the item sequence is
// the correct answer, so this edits correctness directly.
func (s *Store) MoveItem(localID string, from, to int) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.ReorderContent)
		if !ok || from < 0 || from >= len(c.Items) || to < 0 || to >= len(c.Items) || from == to {
			return
		}
		item := c.Items[from]
		c.Items = append(c.Items[:from], c.Items[from+1:]...)
		c.Items = append(c.Items, "")
		copy(c.Items[to+1:], c.Items[to:])
		c.Items[to] = item
	})
}

// ===== CATEGORIZE SUB-OPERATIONS =====

func (s *Store) AddCategory(localID string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		if c, ok := q.Content.(*models.CategorizeContent); ok {
			c.Categories = append(c.Categories, models.Category{Name: "", Items: []string{""}})
		}
	})
}

func (s *Store) SetCategoryName(localID string, catIndex int, name string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.CategorizeContent)
		if !ok || catIndex < 0 || catIndex >= len(c.Categories) {
			return
		}
		c.Categories[catIndex].Name = name
	})
}

func (s *Store) RemoveCategory(localID string, catIndex int) bool {
	removed := false
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.CategorizeContent)
		if !ok || catIndex < 0 || catIndex >= len(c.Categories) {
			return
		}
		if len(c.Categories) <= q.Type.MinEntries() {
			return
		}
		c.Categories = append(c.Categories[:catIndex], c.Categories[catIndex+1:]...)
		removed = true
	})
	return removed
}

func (s *Store) AddCategoryItem(localID string, catIndex int) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.CategorizeContent)
		if !ok || catIndex < 0 || catIndex >= len(c.Categories) {
			return
		}
		c.Categories[catIndex].Items = append(c.Categories[catIndex].Items, "")
	})
}

func (s *Store) SetCategoryItem(localID string, catIndex, itemIndex int, text string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.CategorizeContent)
		if !ok || catIndex < 0 || catIndex >= len(c.Categories) {
			return
		}
		items := c.Categories[catIndex].Items
		if itemIndex < 0 || itemIndex >= len(items) {
			return
		}
		items[itemIndex] = text
	})
}

// RemoveCategoryItem keeps at least one item row per category so a category
// never becomes an empty shell in the editor.
func (s *Store) RemoveCategoryItem(localID string, catIndex, itemIndex int) bool {
	removed := false
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		c, ok := q.Content.(*models.CategorizeContent)
		if !ok || catIndex < 0 || catIndex >= len(c.Categories) {
			return
		}
		items := c.Categories[catIndex].Items
		if itemIndex < 0 || itemIndex >= len(items) || len(items) <= 1 {
			return
		}
		c.Categories[catIndex].Items = append(items[:itemIndex], items[itemIndex+1:]...)
		removed = true
	})
	return removed
}
