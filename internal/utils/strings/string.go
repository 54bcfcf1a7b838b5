package strings

import "strconv"

func Pluralize(singular, plural string, count int) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Count formats count with the matching noun form, as in "2 functions".
func Count(count int, singular, plural string) string {
	return strconv.Itoa(count) + " " + Pluralize(singular, plural, count)
}
