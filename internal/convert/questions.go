package convert

import (
	"io"
	"strconv"

	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

// Each option occupies three columns after the question text:
// option text, next question id, movie id.
const optionWidth = 3

// ConvertQuestions reads a question export. The question id is the row's
// line number so ids line up with the spreadsheet. Rows with no question
// text or no usable option are skipped and reported.
func ConvertQuestions(r io.Reader) (quiz.File, Report, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return quiz.File{}, Report{}, err
	}

	var report Report
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q, reason := QuestionFromRow(row)
		if reason != "" {
			report.skip(row.Line, reason)
			continue
		}
		questions = append(questions, q)
		report.Converted++
	}

	return quiz.File{Questions: questions}, report, nil
}

// QuestionFromRow builds one question. A non-empty reason means the row is
// unusable.
//
// Options are read in slots of three columns until the columns run out;
// a partial trailing slot is ignored. Slots with empty text are dropped
// but keep their number, so option ids follow slot positions. When a slot
// names both a movie and a next question only the movie is kept.
func QuestionFromRow(row Row) (quiz.Question, string) {
	text := row.Field(0)
	if text == "" {
		return quiz.Question{}, "question text is empty"
	}

	slots := (len(row.Fields) - 1) / optionWidth
	options := make([]quiz.Option, 0, slots)
	for slot := 1; slot <= slots; slot++ {
		base := (slot-1)*optionWidth + 1
		optText := row.Field(base)
		if optText == "" {
			continue
		}

		opt := quiz.Option{ID: strconv.Itoa(slot), Text: optText}
		if movieID := row.Field(base + 2); movieID != "" {
			opt.MovieID = movieID
		} else if next := row.Field(base + 1); next != "" {
			opt.NextQuestion = next
		}
		options = append(options, opt)
	}

	if len(options) == 0 {
		return quiz.Question{}, "no options"
	}

	return quiz.Question{
		ID:      strconv.Itoa(row.Line),
		Text:    text,
		Options: options,
	}, ""
}
