package stringsx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// setterPrefix starts the name of a property setter method.
const setterPrefix = "Set"

// UpperFirstChar takes a string and returns a new string with the first character converted to uppercase.
func UpperFirstChar(s string) string {
	if s == "" {
		return ""
	}

	firstRune, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(firstRune)) + s[size:]
}

// IsIdentifier reports whether s is a valid Go identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}

	return true
}

// IsExported reports whether the identifier s starts with an upper-case letter.
func IsExported(s string) bool {
	firstRune, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(firstRune)
}

// SetterName returns the name of the setter method of the property name.
func SetterName(name string) string {
	return setterPrefix + name
}

// PropertyOfSetter returns the property name a setter method name refers to.
// "SetName" yields "Name"; "Settle" and "Set" are not setters.
func PropertyOfSetter(method string) (string, bool) {
	name, ok := strings.CutPrefix(method, setterPrefix)
	if !ok || !IsExported(name) {
		return "", false
	}

	return name, true
}
