package extractor

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// TwitterEpochMS is the platform epoch that snowflake timestamps count from.
const TwitterEpochMS = 1288834974657

const timestampShift = 22

// DecodeSnowflake returns the creation time in Unix milliseconds encoded in a
// post id. Anything that is not an unsigned base-10 integer fitting 64 bits
// decodes to 0.
func DecodeSnowflake(id string) uint64 {
	if !isDigits(id) {
		return 0
	}
	if sf, err := snowflake.ParseString(id); err == nil {
		return uint64(sf.Time())
	}
	// Above MaxInt64 the signed parse fails but the id is still a valid uint64.
	u, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}
	return (u >> timestampShift) + TwitterEpochMS
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
