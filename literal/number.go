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
	"math"
	"strconv"
	"strings"
)

// ParseInt decodes an INT token's literal text (decimal, 0x/0o/0b, with
// optional '_' separators) into its value. It reports an error for
// overflow, which the caller should surface as errors.IntOverflow rather
// than failing the parse (spec.md §4.2, §7: stages recover locally).
func ParseInt(lit string) (int64, error) {
	s := strings.ReplaceAll(lit, "_", "")
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0b"):
		base, s = 2, s[2:]
	}

	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("integer literal %q overflows 64 bits", lit)
	}
	if neg {
		// v's two's-complement bit pattern as an int64 is only the correct
		// negation when v <= 1<<63 (math.MinInt64's magnitude); beyond that
		// -int64(v) silently wraps instead of overflowing.
		if v > 1<<63 {
			return 0, fmt.Errorf("integer literal %q overflows 64 bits", lit)
		}
		return -int64(v), nil
	}
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("integer literal %q overflows 64 bits", lit)
	}
	return int64(v), nil
}

// ParseFloat decodes a FLOAT token's literal text, including "inf"/"nan"
// with an optional sign, and '_' digit separators.
func ParseFloat(lit string) (float64, error) {
	s := strings.ReplaceAll(lit, "_", "")
	switch s {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
