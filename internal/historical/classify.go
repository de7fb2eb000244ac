package historical

import (
	"regexp"
	"strconv"
	"strings"
)

// Data type partitions. Leagues, matchups, transactions, and rosters are
// further partitioned by season; drafts are not (a draft belongs to exactly
// one season already encoded in its league). Anything unrecognized lands in
// the flat misc bucket.
const (
	DataTypeLeagues      = "leagues"
	DataTypeMatchups     = "matchups"
	DataTypeTransactions = "transactions"
	DataTypeRosters      = "rosters"
	DataTypeDrafts       = "drafts"
	DataTypeMisc         = "misc"
)

// Classification is what the store could infer about a key.
type Classification struct {
	// DataType is the inferred partition, DataTypeMisc when nothing
	// matched.
	DataType string

	// Season is the four-digit season embedded in the key, if any.
	Season string

	// Week is the week number embedded in the key, zero if none.
	Week int
}

var (
	seasonPattern = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})(?:[^0-9]|$)`)
	weekPattern   = regexp.MustCompile(`(?i)week[_-]?(\d{1,2})`)
)

// Classify infers a key's data type, season, and week by pattern-matching
// the key string. Callers own their key-naming conventions, so this is
// best-effort: keys that encode nothing recognizable classify as misc with
// no season or week. Reads driven by Classify stay correct either way
// because the key alone identifies the record; classification only picks
// the partition to look in first.
func Classify(key string) Classification {
	c := Classification{DataType: DataTypeMisc}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "matchup"):
		c.DataType = DataTypeMatchups
	case strings.Contains(lower, "transaction"):
		c.DataType = DataTypeTransactions
	case strings.Contains(lower, "roster"):
		c.DataType = DataTypeRosters
	case strings.Contains(lower, "draft"):
		c.DataType = DataTypeDrafts
	case strings.Contains(lower, "league"):
		c.DataType = DataTypeLeagues
	}

	if m := seasonPattern.FindStringSubmatch(key); m != nil {
		c.Season = m[1]
	}
	if m := weekPattern.FindStringSubmatch(key); m != nil {
		if week, err := strconv.Atoi(m[1]); err == nil {
			c.Week = week
		}
	}

	return c
}

// seasonPartitioned reports whether a data type is partitioned by season.
func seasonPartitioned(dataType string) bool {
	switch dataType {
	case DataTypeLeagues, DataTypeMatchups, DataTypeTransactions, DataTypeRosters:
		return true
	}
	return false
}

// knownDataType reports whether dataType is one of the named partitions.
func knownDataType(dataType string) bool {
	return seasonPartitioned(dataType) || dataType == DataTypeDrafts
}
