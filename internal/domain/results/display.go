package results

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/okian/langvote/internal/domain/model"
)

// InvalidDate is shown in place of an unparsable submission time.
const InvalidDate = "Invalid date"

// DisplayTimeLayout renders submission times for people.
const DisplayTimeLayout = "Jan 2, 2006, 03:04 PM"

// Label capitalizes the first character of a language key.
func Label(lang string) string {
	r, size := utf8.DecodeRuneInString(lang)
	if r == utf8.RuneError {
		return lang
	}
	return string(unicode.ToUpper(r)) + lang[size:]
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatSubmitted renders a TimeSubmitted value in loc, or InvalidDate.
func FormatSubmitted(ts string, loc *time.Location) string {
	t, ok := model.ParseTime(ts)
	if !ok {
		return InvalidDate
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DisplayTimeLayout)
}
