package textstats

import "strings"

const vowels = "aeiouy"

// CountSyllables estimates syllables by counting groups of consecutive vowels,
// dropping one for a trailing "e". Every word has at least one syllable.
func CountSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(word, "e") {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
