// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// DateTimeField names one field of a date-time literal, for diagnostics.
// Grounded on original_source/crates/toml/src/datetime.rs' DateTimeField.
type DateTimeField int

const (
	FieldYear DateTimeField = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
	FieldOffsetHour
	FieldOffsetMinute
)

func (f DateTimeField) String() string {
	switch f {
	case FieldYear:
		return "year"
	case FieldMonth:
		return "month"
	case FieldDay:
		return "day"
	case FieldHour:
		return "hour"
	case FieldMinute:
		return "minute"
	case FieldSecond:
		return "second"
	case FieldOffsetHour:
		return "offset-hour"
	case FieldOffsetMinute:
		return "offset-minute"
	}
	return "unknown"
}

// DateTimeFields is the decoded, range-checked content of a date-time
// literal. OffsetKnown distinguishes a 'Z'/explicit-offset literal
// (OffsetMinutes valid) from a local date-time (no offset at all).
type DateTimeFields struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	Nanosecond                int
	NanosecondTruncated       bool
	OffsetMinutes             int
	OffsetKnown               bool
}

var daysInMonth = [...]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// FieldError is the error ParseDateTime returns when a field of lit (the
// raw token text of a DATETIME_*, DATE_LOCAL or TIME_LOCAL token) is out of
// range; Field identifies which one. The caller emits an InvalidDateField
// diagnostic and keeps the best-effort parse (spec.md §4.1, §6, §7).
type FieldError struct {
	Field DateTimeField
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s in date-time literal", e.Field)
}

// ParseDateTime parses a full or partial date-time literal. hasDate and
// hasTime indicate which parts are present, mirroring the four shapes of
// spec.md §6.
func ParseDateTime(lit string, hasDate, hasTime bool) (DateTimeFields, error) {
	var out DateTimeFields
	rest := lit

	if hasDate {
		if len(rest) < 10 {
			return out, fmt.Errorf("truncated date")
		}
		datePart := rest[:10]
		rest = rest[10:]
		var err error
		out.Year, out.Month, out.Day, err = parseDateDigits(datePart)
		if err != nil {
			return out, err
		}
		if hasTime && len(rest) > 0 && (rest[0] == 'T' || rest[0] == 't' || rest[0] == ' ') {
			rest = rest[1:]
		}
	}

	if hasTime {
		timeErr := parseTimePart(rest, &out)
		if timeErr != nil {
			return out, timeErr
		}
	}

	return out, nil
}

func parseDateDigits(s string) (year, month, day int, err error) {
	if s[4] != '-' || s[7] != '-' {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}
	year, e1 := strconv.Atoi(s[0:4])
	month, e2 := strconv.Atoi(s[5:7])
	day, e3 := strconv.Atoi(s[8:10])
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}
	if month < 1 || month > 12 {
		return year, month, day, &FieldError{Field: FieldMonth}
	}
	maxDay := daysInMonth[month-1]
	if month == 2 && !isLeapYear(year) {
		maxDay = 28
	}
	if day < 1 || day > maxDay {
		return year, month, day, &FieldError{Field: FieldDay}
	}
	return year, month, day, nil
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func parseTimePart(rest string, out *DateTimeFields) error {
	offsetIdx := strings.IndexAny(rest, "Zz+-")
	// A leading '-' would only occur if rest is malformed; the time grammar
	// is exactly HH:MM:SS, so offsets never start before index 8.
	timePart := rest
	var offsetPart string
	if offsetIdx >= 8 {
		timePart, offsetPart = rest[:offsetIdx], rest[offsetIdx:]
	}
	if len(timePart) < 8 || timePart[2] != ':' || timePart[5] != ':' {
		return fmt.Errorf("malformed time %q", timePart)
	}
	hour, e1 := strconv.Atoi(timePart[0:2])
	minute, e2 := strconv.Atoi(timePart[3:5])
	second, e3 := strconv.Atoi(timePart[6:8])
	if e1 != nil || e2 != nil || e3 != nil {
		return fmt.Errorf("malformed time %q", timePart)
	}
	out.Hour, out.Minute, out.Second = hour, minute, second
	if hour > 23 {
		return &FieldError{Field: FieldHour}
	}
	if minute > 59 {
		return &FieldError{Field: FieldMinute}
	}
	if second > 60 { // 60 allows a leap second through, as most TOML impls do
		return &FieldError{Field: FieldSecond}
	}

	if len(timePart) > 9 && timePart[8] == '.' {
		frac := timePart[9:]
		if len(frac) > 9 {
			out.NanosecondTruncated = true
			frac = frac[:9]
		}
		for len(frac) < 9 {
			frac += "0"
		}
		ns, err := strconv.Atoi(frac)
		if err == nil {
			out.Nanosecond = ns
		}
	}

	if offsetPart == "" {
		return nil
	}
	out.OffsetKnown = true
	if offsetPart == "Z" || offsetPart == "z" {
		out.OffsetMinutes = 0
		return nil
	}
	if len(offsetPart) != 6 || offsetPart[3] != ':' {
		return fmt.Errorf("malformed offset %q", offsetPart)
	}
	sign := 1
	if offsetPart[0] == '-' {
		sign = -1
	}
	oh, e1 := strconv.Atoi(offsetPart[1:3])
	om, e2 := strconv.Atoi(offsetPart[4:6])
	if e1 != nil || e2 != nil {
		return fmt.Errorf("malformed offset %q", offsetPart)
	}
	if oh > 23 {
		return &FieldError{Field: FieldOffsetHour}
	}
	if om > 59 {
		return &FieldError{Field: FieldOffsetMinute}
	}
	out.OffsetMinutes = sign * (oh*60 + om)
	return nil
}
