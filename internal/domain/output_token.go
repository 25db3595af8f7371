package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const tokenTimeLayout = "20060102_150405"

// OutputToken tags every file produced by one fetch. Any file the engine
// writes for the fetch contains the token in its name and ends with the
// kind's container extension; Template and Matches are the two halves of
// that contract.
type OutputToken string

// NewOutputToken returns a second-resolution timestamp token with a short
// random suffix separating fetches started in the same second
func NewOutputToken(now time.Time) OutputToken {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return OutputToken(now.Format(tokenTimeLayout) + "_" + suffix)
}

func (t OutputToken) String() string {
	return string(t)
}

// Template returns the engine output filename template for a profile
func (t OutputToken) Template(p KindProfile) string {
	var b strings.Builder
	b.WriteString("%(title)s_")
	if p.NameSuffix != "" {
		b.WriteString(p.NameSuffix)
		b.WriteString("_")
	}
	b.WriteString(string(t))
	if p.NameByFormatID {
		b.WriteString("_%(format_id)s")
	}
	b.WriteString(".%(ext)s")
	return b.String()
}

// Matches reports whether a filename belongs to this token's fetch.
// Engine partials (.part, .ytdl) never match since the extension must be exact.
func (t OutputToken) Matches(filename, container string) bool {
	if t == "" || !strings.Contains(filename, string(t)) {
		return false
	}
	return strings.EqualFold(extensionOf(filename), container)
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx+1:]
}
