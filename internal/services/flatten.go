package services

import (
	"strings"

	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/models"
)

// FlattenOptions turns a question's variant payload into the flat option
// records the platform stores. Blank rows are dropped, and Order is the index
// within the filtered list, not the original row slot: a blank between two
// answers shifts the orders of everything after it. That matches what the
// platform has always received.
//
// Rules per variant:
//   - Choice/Multiple: one record per non-blank answer, correct when its
//     original row index is in CorrectAnswers.
//   - FillGap: every non-blank answer is a correct gap filling.
//   - Reorder: every non-blank item is correct; the order is the answer.
//   - Categorize: categories with blank names are skipped entirely; Order is
//     a running counter across the question's surviving categories.
func FlattenOptions(q *models.QuestionDraft, questionID string) []client.OptionRecord {
	switch c := q.Content.(type) {
	case *models.ChoiceContent:
		return flattenAnswers(questionID, c.Answers, c.CorrectAnswers)
	case *models.MultipleContent:
		return flattenAnswers(questionID, c.Answers, c.CorrectAnswers)
	case *models.FillGapContent:
		return flattenAllCorrect(questionID, c.Answers)
	case *models.ReorderContent:
		return flattenAllCorrect(questionID, c.Items)
	case *models.CategorizeContent:
		return flattenCategories(questionID, c.Categories)
	default:
		return nil
	}
}

func flattenAnswers(questionID string, answers []string, correct []int) []client.OptionRecord {
	correctSet := make(map[int]bool, len(correct))
	for _, i := range correct {
		correctSet[i] = true
	}

	records := make([]client.OptionRecord, 0, len(answers))
	for i, answer := range answers {
		if strings.TrimSpace(answer) == "" {
			continue
		}
		records = append(records, client.OptionRecord{
			QuestionID: questionID,
			Text:       answer,
			IsCorrect:  correctSet[i],
			Order:      len(records),
			GapText:    answer,
		})
	}
	return records
}

func flattenAllCorrect(questionID string, rows []string) []client.OptionRecord {
	records := make([]client.OptionRecord, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}
		records = append(records, client.OptionRecord{
			QuestionID: questionID,
			Text:       row,
			IsCorrect:  true,
			Order:      len(records),
			GapText:    row,
		})
	}
	return records
}

func flattenCategories(questionID string, categories []models.Category) []client.OptionRecord {
	var records []client.OptionRecord
	for _, category := range categories {
		if strings.TrimSpace(category.Name) == "" {
			continue
		}
		for _, item := range category.Items {
			if strings.TrimSpace(item) == "" {
				continue
			}
			records = append(records, client.OptionRecord{
				QuestionID: questionID,
				Text:       item,
				IsCorrect:  true,
				Order:      len(records),
				GapText:    item,
				Category:   category.Name,
			})
		}
	}
	return records
}
