package model

import (
	"regexp"
	"strings"
	"unicode"
)

var labelSeparators = regexp.MustCompile(`[_\-.\s]+`)

var labelAcronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"ssn":  "SSN",
	"nid":  "NID",
	"iban": "IBAN",
	"dob":  "DOB",
}

// DefaultLabeler turns a field name such as "employee_id" or "basicSalary"
// into a display label ("Employee ID", "Basic Salary").
func DefaultLabeler(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	var words []string
	for _, chunk := range labelSeparators.Split(name, -1) {
		for _, word := range splitCamelWords(chunk) {
			words = append(words, labelWord(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamelWords(input string) []string {
	if input == "" {
		return nil
	}
	runes := []rune(input)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		if (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
			(unicode.IsDigit(prev) && unicode.IsLetter(cur)) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func labelWord(word string) string {
	lower := strings.ToLower(word)
	if acronym, ok := labelAcronyms[lower]; ok {
		return acronym
	}
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
