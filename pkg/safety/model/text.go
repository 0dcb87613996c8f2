package model

import (
	"strings"
	"unicode"
)

// LongWordLetters is the letter count above which a word is complex for a
// young reader.
const LongWordLetters = 8

// LongWordRatio returns the share of words with more than LongWordLetters
// letters.
func LongWordRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	return float64(CountLongWords(words)) / float64(len(words))
}

// CountLongWords counts words with more than LongWordLetters letters,
// ignoring surrounding punctuation.
func CountLongWords(words []string) int {
	n := 0
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters > LongWordLetters {
			n++
		}
	}
	return n
}
