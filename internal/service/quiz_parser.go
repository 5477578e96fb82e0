package service

import (
	"bufio"
	"regexp"
	"strings"
)

var numberedLine = regexp.MustCompile(`^\d+[.)]`)

// ExtractQuestions picks question lines out of raw text. A trimmed, non-empty
// line is kept when it starts with a number followed by "." or ")", or when
// it ends with "?". Order is preserved and nothing is merged or de-duplicated.
func ExtractQuestions(raw string) []string {
	questions := make([]string, 0)
	if strings.TrimSpace(raw) == "" {
		return questions
	}

	// bufio.ScanLines only splits on \n; lone carriage returns come from old Mac
	// exports and some OCR output.
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	scanner := bufio.NewScanner(strings.NewReader(normalized))
	scanner.Buffer(make([]byte, 0, 64*1024), len(normalized)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isQuestionLine(line) {
			questions = append(questions, line)
		}
	}
	return questions
}

func isQuestionLine(line string) bool {
	return numberedLine.MatchString(line) || strings.HasSuffix(line, "?")
}
