package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/ident"
)

const (
	wordPrefix        = "W:"
	formPrefix        = "F:"
	typePrefix        = "T:"
	meaningPrefix     = "M:"
	requiresPrefix    = "R:"
	sentencePrefix    = "S:"
	translationPrefix = "E:"
	separator         = "---"
)

type state int

const (
	seeking state = iota
	readingWord
	readingMeaning
	readingSentence
	readingTranslation
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Deck is the content of one or more deck files.
type Deck struct {
	Words  []domain.VocabularyWord
	Drills []domain.Drill
}

// EntryError describes an entry that could not be turned into a word or drill.
type EntryError struct {
	Line int
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry at line %d: %v", e.Line, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ParseFile reads a deck file from the given path.
func ParseFile(path string) (Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return Deck{}, err
	}
	defer file.Close()

	return Parse(file)
}

// entry accumulates the fields of the word or drill being read.
type entry struct {
	line        int
	isSentence  bool
	id          string
	form        string
	wordType    string
	meaning     []string
	requires    []string
	tokens      []string
	translation []string
}

// Parse reads deck entries from r. Entries that fail validation are reported
// as *EntryError values joined into the returned error; all other entries are
// returned regardless.
func Parse(r io.Reader) (Deck, error) {
	scanner := bufio.NewScanner(r)
	var deck Deck
	var errs []error
	var current *entry
	currentState := seeking
	lineNo := 0

	finishEntry := func() {
		if current != nil {
			if err := current.addTo(&deck); err != nil {
				errs = append(errs, &EntryError{Line: current.line, Err: err})
			}
		}
		current = nil
		currentState = seeking
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishEntry()
			continue
		}

		prefix, content, ok := splitPrefix(line)
		if !ok {
			// Continuation lines extend multi-line fields only.
			switch currentState {
			case readingMeaning:
				current.meaning = append(current.meaning, line)
			case readingTranslation:
				current.translation = append(current.translation, line)
			}
			continue
		}

		switch prefix {
		case wordPrefix, sentencePrefix:
			finishEntry()
			current = &entry{line: lineNo, isSentence: prefix == sentencePrefix}
			if current.isSentence {
				current.tokens = strings.Fields(content)
				currentState = readingSentence
			} else {
				current.id = strings.TrimSpace(content)
				currentState = readingWord
			}
		case formPrefix, typePrefix, requiresPrefix, meaningPrefix:
			if current == nil || current.isSentence {
				continue
			}
			currentState = readingWord
			switch prefix {
			case formPrefix:
				current.form = strings.TrimSpace(content)
			case typePrefix:
				current.wordType = strings.TrimSpace(content)
			case requiresPrefix:
				current.requires = splitList(content)
			case meaningPrefix:
				current.meaning = append(current.meaning, content)
				currentState = readingMeaning
			}
		case translationPrefix:
			if current == nil || !current.isSentence {
				continue
			}
			current.translation = append(current.translation, content)
			currentState = readingTranslation
		}
	}

	finishEntry() // Finish the very last entry in the file

	if err := scanner.Err(); err != nil {
		return Deck{}, err
	}

	return deck, errors.Join(errs...)
}

func (e *entry) addTo(deck *Deck) error {
	if e.isSentence {
		drill := domain.Drill{
			ID:          ident.Hash(e.tokens),
			Tokens:      e.tokens,
			Translation: joinBlock(e.translation),
		}
		if err := validate.Struct(drill); err != nil {
			return fmt.Errorf("invalid sentence: %w", err)
		}
		deck.Drills = append(deck.Drills, drill)
		return nil
	}

	wordType, err := domain.ParseWordType(e.wordType)
	if err != nil && e.wordType != "" {
		return err
	}
	word := domain.VocabularyWord{
		ID:               e.id,
		Text:             e.form,
		Meaning:          joinBlock(e.meaning),
		Type:             wordType,
		RequiresParticle: e.requires,
	}
	if word.Text == "" {
		word.Text = word.ID
	}
	if err := validate.Struct(word); err != nil {
		return fmt.Errorf("invalid word %q: %w", e.id, err)
	}
	deck.Words = append(deck.Words, word)
	return nil
}

// splitPrefix recognises a field line and strips its prefix and one optional space.
func splitPrefix(line string) (prefix, content string, ok bool) {
	for _, p := range []string{wordPrefix, formPrefix, typePrefix, meaningPrefix, requiresPrefix, sentencePrefix, translationPrefix} {
		if strings.HasPrefix(line, p) {
			content = line[len(p):]
			if strings.HasPrefix(content, " ") {
				content = content[1:]
			}
			return p, content, true
		}
	}
	return "", "", false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinBlock(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
