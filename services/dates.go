package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	isoDateRegexp      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	europeanDateRegexp = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
)

// ParseDateLoose accepts ISO dates (with "-" or "/"), European D.M.YYYY
// dates and finally anything dateparse understands. Results are in UTC and
// meant for ordering, not for exact timezone arithmetic.
func ParseDateLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	iso := strings.ReplaceAll(s, "/", "-")
	if isoDateRegexp.MatchString(iso) {
		if t, err := time.Parse(time.DateOnly, iso); err == nil {
			return t, true
		}
	}

	if m := europeanDateRegexp.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		assembled := fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		if t, err := time.Parse(time.DateOnly, assembled); err == nil {
			return t, true
		}
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
