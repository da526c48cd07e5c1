// Package textstats tokenizes English prose and computes readability scores.
package textstats

import (
	"regexp"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	wordPattern  = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*|\.\.\.|[^\p{L}\p{N}\s]`)
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	return tokenizer, tokenizerErr
}

// Sentences splits text into sentences with the English Punkt model.
// If the model cannot be loaded, text is split on terminal punctuation.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tok, err := sentenceTokenizer()
	if err != nil {
		return splitOnTerminators(text)
	}

	var out []string
	for _, s := range tok.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitOnTerminators(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Words returns the word tokens of text. Punctuation is never a word; inner
// apostrophes and hyphens stay inside the token ("don't", "double-blind").
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Tokens returns the words of text together with its punctuation marks,
// one token per mark except for an ellipsis. "(yet)." gives "(", "yet",
// ")" and ".".
func Tokens(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
