// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package github

import (
	"math"
	"strconv"
	"time"
)

// LanguagePercentages converts a language byte-count map into whole
// percentages. Percentages are rounded half-up independently per language and
// are not adjusted to sum exactly to 100: three equal languages come out as
// 33/33/33. An empty or zero-sum map yields an empty map.
func LanguagePercentages(languages map[string]int) map[string]int {
	var total int
	for _, bytes := range languages {
		total += bytes
	}
	percentages := make(map[string]int, len(languages))
	if total == 0 {
		return percentages
	}
	for lang, bytes := range languages {
		percentages[lang] = int(math.Floor(float64(bytes)/float64(total)*100 + 0.5))
	}
	return percentages
}

// Fixed approximations of calendar units, largest first. A year is 365 days
// and a month is 30, so "N months ago" drifts slightly over long spans.
var timeAgoUnits = []struct {
	seconds int64
	name    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{604800, "week"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// used in tests
var timeNow = time.Now

// TimeAgo formats the given RFC 3339 timestamp as a relative time like
// "2 hours ago". Anything under a minute is "just now". An unparsable
// timestamp yields an empty string.
func TimeAgo(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	elapsed := int64(timeNow().Sub(t).Seconds())
	for _, unit := range timeAgoUnits {
		if n := elapsed / unit.seconds; n >= 1 {
			s := strconv.FormatInt(n, 10) + " " + unit.name
			if n > 1 {
				s += "s"
			}
			return s + " ago"
		}
	}
	return "just now"
}
