package services

import (
	"fmt"
	"strings"

	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportDraft renders the session's current draft as an authoring worksheet:
// one settings sheet and one questions sheet with a row per option record
// (flattened the same way persistence would flatten them, but without
// touching the platform).
func (s *editorService) ExportDraft(sessionID string) ([]byte, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	d := session.store.Draft()

	f := excelize.NewFile()
	settingsSheet := "Quiz"
	questionsSheet := "Questions"

	index, err := f.NewSheet(settingsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	// Settings sheet
	settings := [][]interface{}{
		{"Title", d.Title},
		{"Content ID", d.ContentID},
		{"Duration (minutes)", d.DurationMinutes},
		{"Can Skip", d.CanSkip},
		{"Questions", len(d.Questions)},
	}
	for i, row := range settings {
		f.SetCellValue(settingsSheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(settingsSheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	// Questions sheet
	headers := []string{"#", "Question Type", "Question Text", "Points", "Option", "Correct", "Category"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(questionsSheet, cell, header)
	}

	rowIndex := 2
	for qIndex, q := range d.Questions {
		rows := questionRows(qIndex, q)
		for _, row := range rows {
			for colIndex, value := range row {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
				f.SetCellValue(questionsSheet, cell, value)
			}
			rowIndex++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

// questionRows produces one worksheet row per option of the question. The
// question id has not been assigned yet, so flattening runs with a blank id.
func questionRows(index int, q *models.QuestionDraft) [][]interface{} {
	records := FlattenOptions(q, "")
	if len(records) == 0 {
		return [][]interface{}{
			{index + 1, q.Type.Title(), strings.TrimSpace(q.Text), q.Points, "", "", ""},
		}
	}

	rows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, []interface{}{
			index + 1, q.Type.Title(), strings.TrimSpace(q.Text), q.Points,
			record.Text, record.IsCorrect, record.Category,
		})
	}
	return rows
}
