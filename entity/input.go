package entity

import "strings"

// ParseEntry reads what the user typed in the add form. The shorthand
// "name | status" overrides fallback when the trailing token is a known
// status; otherwise the whole text is the name. Names are upper-cased.
func ParseEntry(text string, fallback Status) (string, Status, error) {
	text = strings.TrimSpace(text)
	status := fallback
	if name, tail, ok := strings.Cut(text, "|"); ok {
		tail = strings.TrimSpace(tail)
		if tail != "" {
			if st, err := ParseStatus(tail); err == nil {
				status = st
				text = strings.TrimSpace(name)
			}
		}
	}
	if text == "" {
		return "", "", ErrEmptyName
	}
	st, err := ParseStatus(string(status))
	if err != nil {
		return "", "", err
	}
	return strings.ToUpper(text), st, nil
}
