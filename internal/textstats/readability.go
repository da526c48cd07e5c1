package textstats

import "paper-analyzer/internal/domain"

const (
	// ComplexWordSyllables is the syllable count from which a word is complex.
	ComplexWordSyllables = 3
	// LongSentenceWords is the word count above which a sentence is long.
	LongSentenceWords = 30
)

// Stats tokenizes text once and returns the counts used by the readability formulas.
func Stats(text string) domain.TextStats {
	var st domain.TextStats

	sents := Sentences(text)
	st.Sentences = len(sents)
	for _, s := range sents {
		if len(Words(s)) > LongSentenceWords {
			st.LongSentences++
		}
	}

	for _, w := range Words(text) {
		st.Words++
		syl := CountSyllables(w)
		st.Syllables += syl
		if syl >= ComplexWordSyllables {
			st.ComplexWords++
		}
	}

	if st.Sentences > 0 {
		st.AvgWordsPerSentence = float64(st.Words) / float64(st.Sentences)
	}
	if st.Words > 0 {
		st.AvgSyllablesPerWord = float64(st.Syllables) / float64(st.Words)
	}

	for _, tok := range Tokens(text) {
		st.Tokens++
		st.TokenSyllables += CountSyllables(tok)
	}
	if st.Sentences > 0 && st.Words > 0 {
		st.TokenReadingEase = 206.835 -
			1.015*float64(st.Tokens)/float64(st.Sentences) -
			84.6*float64(st.TokenSyllables)/float64(st.Tokens)
	}
	return st
}

// FleschReadingEase returns the Flesch Reading Ease score of text, or 0 when
// text has no sentences or no words. The score is not clamped to [0, 100].
func FleschReadingEase(text string) float64 {
	return ReadingEase(Stats(text))
}

// ReadingEase computes Flesch Reading Ease from precomputed stats.
func ReadingEase(st domain.TextStats) float64 {
	if st.Sentences == 0 || st.Words == 0 {
		return 0
	}
	return 206.835 - 1.015*st.AvgWordsPerSentence - 84.6*st.AvgSyllablesPerWord
}

// FleschKincaidGrade returns the US school grade level of text, or 0 on empty input.
func FleschKincaidGrade(text string) float64 {
	return GradeLevel(Stats(text))
}

// GradeLevel computes the Flesch-Kincaid grade from precomputed stats.
func GradeLevel(st domain.TextStats) float64 {
	if st.Sentences == 0 || st.Words == 0 {
		return 0
	}
	return 0.39*st.AvgWordsPerSentence + 11.8*st.AvgSyllablesPerWord - 15.59
}
