package services

import (
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
)

// The generation prompts embed an exact output template; these parsers hold
// the model to it. Anything that cannot be parsed into complete records is an
// ErrGenerationFormat, surfaced to the client as a generation format error
// rather than silently storing partial content.

type ParsedCard struct {
	Question string
	Answer   string
}

type ParsedQuestion struct {
	Question    string
	OptionA     string
	OptionB     string
	OptionC     string
	OptionD     string
	Correct     string
	Explanation string
}

const maxOptionLen = 500

var cardHeaderRe = regexp.MustCompile(`(?i)^card\s+\d+\s*:`)

// ParseSummary expects a SUMMARY: block followed by a KEY POINTS: block with
// one bullet per point.
func ParseSummary(raw string) (string, []string, error) {
	var contentLines []string
	var keyPoints []string
	section := ""

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.HasPrefix(upper, "SUMMARY:"):
			section = "summary"
			if rest := strings.TrimSpace(trimmed[len("SUMMARY:"):]); rest != "" {
				contentLines = append(contentLines, rest)
			}
		case strings.HasPrefix(upper, "KEY POINTS:"):
			section = "keypoints"
		case section == "summary":
			contentLines = append(contentLines, trimmed)
		case section == "keypoints":
			point := strings.TrimSpace(strings.TrimLeft(trimmed, "-*• \t"))
			if point != "" {
				keyPoints = append(keyPoints, point)
			}
		}
	}

	content := strings.TrimSpace(strings.Join(contentLines, "\n"))
	if content == "" {
		return "", nil, fmt.Errorf("%w: missing SUMMARY section", pkgerrors.ErrGenerationFormat)
	}
	if len(keyPoints) == 0 {
		return "", nil, fmt.Errorf("%w: missing KEY POINTS section", pkgerrors.ErrGenerationFormat)
	}
	return content, keyPoints, nil
}

// ParseFlashcards expects "Card N:" blocks each holding a Q: and an A: line.
// Untagged lines continue the field started above them.
func ParseFlashcards(raw string) ([]ParsedCard, error) {
	var cards []ParsedCard
	var current *ParsedCard
	lastField := ""

	flush := func() error {
		if current == nil {
			return nil
		}
		if strings.TrimSpace(current.Question) == "" || strings.TrimSpace(current.Answer) == "" {
			return fmt.Errorf("%w: flashcard %d is missing its question or answer", pkgerrors.ErrGenerationFormat, len(cards)+1)
		}
		current.Question = strings.TrimSpace(current.Question)
		current.Answer = strings.TrimSpace(current.Answer)
		cards = append(cards, *current)
		current = nil
		return nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case cardHeaderRe.MatchString(trimmed):
			if err := flush(); err != nil {
				return nil, err
			}
			current = &ParsedCard{}
			lastField = ""
		case strings.HasPrefix(trimmed, "Q:"):
			if current == nil {
				current = &ParsedCard{}
			}
			current.Question = strings.TrimSpace(trimmed[2:])
			lastField = "question"
		case strings.HasPrefix(trimmed, "A:"):
			if current == nil {
				return nil, fmt.Errorf("%w: answer line before any card", pkgerrors.ErrGenerationFormat)
			}
			current.Answer = strings.TrimSpace(trimmed[2:])
			lastField = "answer"
		default:
			if current == nil {
				continue
			}
			switch lastField {
			case "question":
				current.Question += " " + trimmed
			case "answer":
				current.Answer += " " + trimmed
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in model output", pkgerrors.ErrGenerationFormat)
	}
	return cards, nil
}

// ParseQuiz expects "Q:" blocks with options "A)".."D)", a "Correct:" letter
// and an optional "Explanation:". Options are clipped to 500 characters; the
// correct letter must be one of A-D.
func ParseQuiz(raw string) ([]ParsedQuestion, error) {
	var questions []ParsedQuestion
	var current *ParsedQuestion
	lastField := ""

	flush := func() error {
		if current == nil {
			return nil
		}
		current.Question = strings.TrimSpace(current.Question)
		current.Explanation = strings.TrimSpace(current.Explanation)
		if current.Question == "" {
			return fmt.Errorf("%w: question %d has no text", pkgerrors.ErrGenerationFormat, len(questions)+1)
		}
		if current.OptionA == "" || current.OptionB == "" || current.OptionC == "" || current.OptionD == "" {
			return fmt.Errorf("%w: question %d is missing options", pkgerrors.ErrGenerationFormat, len(questions)+1)
		}
		if current.Correct < "A" || current.Correct > "D" || len(current.Correct) != 1 {
			return fmt.Errorf("%w: question %d has invalid correct answer %q", pkgerrors.ErrGenerationFormat, len(questions)+1, current.Correct)
		}
		questions = append(questions, *current)
		current = nil
		return nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "Q:"):
			if err := flush(); err != nil {
				return nil, err
			}
			current = &ParsedQuestion{}
			current.Question = strings.TrimSpace(trimmed[2:])
			lastField = "question"
		case current == nil:
			continue
		case strings.HasPrefix(trimmed, "A)"):
			current.OptionA = clipOption(trimmed[2:])
			lastField = ""
		case strings.HasPrefix(trimmed, "B)"):
			current.OptionB = clipOption(trimmed[2:])
			lastField = ""
		case strings.HasPrefix(trimmed, "C)"):
			current.OptionC = clipOption(trimmed[2:])
			lastField = ""
		case strings.HasPrefix(trimmed, "D)"):
			current.OptionD = clipOption(trimmed[2:])
			lastField = ""
		case strings.HasPrefix(strings.ToUpper(trimmed), "CORRECT:"):
			value := strings.TrimSpace(trimmed[len("CORRECT:"):])
			if value == "" {
				return nil, fmt.Errorf("%w: question %d has an empty correct answer", pkgerrors.ErrGenerationFormat, len(questions)+1)
			}
			current.Correct = strings.ToUpper(string(value[0]))
			lastField = ""
		case strings.HasPrefix(strings.ToUpper(trimmed), "EXPLANATION:"):
			current.Explanation = strings.TrimSpace(trimmed[len("EXPLANATION:"):])
			lastField = "explanation"
		default:
			switch lastField {
			case "question":
				current.Question += " " + trimmed
			case "explanation":
				current.Explanation += " " + trimmed
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in model output", pkgerrors.ErrGenerationFormat)
	}
	return questions, nil
}

func clipOption(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOptionLen {
		s = s[:maxOptionLen]
	}
	return s
}
