package normalisers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

var personalNumberPattern = regexp.MustCompile(`^\d{6}-\d{4}$`)

// maxAge is the oldest age accepted when picking the birth century.
const maxAge = 99

// ClassifyOrgNumber classifies an organisation number field.
//
// A "yyMMdd-nnnn" value is a personal number: the birth year is taken from
// the current or the previous century, whichever gives an age between 0 and
// 99 at now. Anything else, including impossible dates, is a company.
func ClassifyOrgNumber(orgNumber string, now time.Time) (domain.CustomerType, *time.Time) {
	s := strings.TrimSpace(orgNumber)
	if !personalNumberPattern.MatchString(s) {
		return domain.CustomerCompany, nil
	}

	yy, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:6])

	century := now.Year() / 100 * 100
	for _, year := range []int{century + yy, century - 100 + yy} {
		birth, ok := makeDate(year, mm, dd)
		if !ok {
			continue
		}
		if age := ageAt(birth, now); age >= 0 && age <= maxAge {
			return domain.CustomerPrivate, &birth
		}
	}
	return domain.CustomerCompany, nil
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ageAt returns completed years between birth and now. It is negative for
// birth dates in the future.
func ageAt(birth, now time.Time) int {
	if now.Before(birth) {
		return -1
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
