package viewstate

import "strings"

// Bullet is the list marker inserted by AppendBullet.
const Bullet = "• "

// Untitled replaces a blank title when a note is saved.
const Untitled = "Untitled"

// AppendBullet starts a new bullet line at the end of body.
func AppendBullet(body string) string {
	switch {
	case strings.TrimSpace(body) == "":
		return Bullet
	case strings.HasSuffix(body, "\n"):
		return body + Bullet
	default:
		return body + "\n" + Bullet
	}
}

// SavedTitle is the title a note is persisted with.
func SavedTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return Untitled
	}
	return title
}
