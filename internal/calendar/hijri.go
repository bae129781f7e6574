// Package calendar projects Gregorian dates onto the arithmetic Islamic
// (Hijri) calendar used for payment schedules across the Gulf.
//
// The conversion is the tabular "civil" variant: a 30-year cycle with leap
// years 2, 5, 7, 10, 13, 16, 18, 21, 24, 26 and 29, odd months of 30 days,
// even months of 29 days and a 30-day Dhu al-Hijjah in leap years. Official
// calendars based on moon sighting (Umm al-Qura) may differ by a day or two.
package calendar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrOutOfRange is returned for dates outside Hijri years 1..9999.
var ErrOutOfRange = errors.New("date outside supported hijri range")

const (
	// CalendarIslamicCivil identifies dates produced by Hijri.
	CalendarIslamicCivil = "islamic-civil"

	maxYear = 9999

	// Julian day number of 1 Muharram 1 AH (16 July 622 Julian).
	islamicEpoch = 1948440
	// Julian day number of 1970-01-01.
	unixEpochJDN = 2440588
)

var monthNames = [12]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// Date is a day in a non-Gregorian calendar.
type Date struct {
	Calendar string `json:"calendar"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MonthName returns the transliterated Hijri month name.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

// IsLeapYear reports whether the Hijri year has 355 days.
func IsLeapYear(year int) bool {
	return (14+11*year)%30 < 11
}

// DaysInMonth returns the length of a Hijri month.
func DaysInMonth(year, month int) int {
	if month%2 == 1 || (month == 12 && IsLeapYear(year)) {
		return 30
	}
	return 29
}

// ToHijri converts the calendar day of t (in t's own location).
func ToHijri(t time.Time) (Date, error) {
	jdn := gregorianToJDN(t)
	if jdn < islamicEpoch {
		return Date{}, fmt.Errorf("%w: %s precedes 1 Muharram 1 AH", ErrOutOfRange, t.Format(time.DateOnly))
	}

	year := int((30*(jdn-islamicEpoch) + 10646) / 10631)
	if year > maxYear {
		return Date{}, fmt.Errorf("%w: %s", ErrOutOfRange, t.Format(time.DateOnly))
	}

	month := int(math.Ceil(float64(jdn-(29+hijriToJDN(year, 1, 1)))/29.5)) + 1
	if month > 12 {
		month = 12
	}
	day := int(jdn-hijriToJDN(year, month, 1)) + 1

	return Date{Calendar: CalendarIslamicCivil, Year: year, Month: month, Day: day}, nil
}

// FromHijri converts a Hijri date to midnight UTC of the matching Gregorian day.
func FromHijri(d Date) (time.Time, error) {
	if d.Year < 1 || d.Year > maxYear {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrOutOfRange, d.Year)
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return time.Time{}, fmt.Errorf("invalid hijri date %s", d)
	}
	days := hijriToJDN(d.Year, d.Month, d.Day) - unixEpochJDN
	return time.Unix(days*86400, 0).UTC(), nil
}

// Hijri is the default alternate-calendar converter for milestone plans.
type Hijri struct{}

// Convert implements milestone.Converter.
func (Hijri) Convert(t time.Time) (Date, error) {
	return ToHijri(t)
}

func hijriToJDN(year, month, day int) int64 {
	return int64(day) +
		int64(math.Ceil(29.5*float64(month-1))) +
		int64(year-1)*354 +
		int64((3+11*year)/30) +
		islamicEpoch - 1
}

func gregorianToJDN(t time.Time) int64 {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnight.Unix()/86400 + unixEpochJDN
}
