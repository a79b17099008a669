package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/Nyctonit/feature-flags-service/internal/domain"
)

// Bucketing wire contract, shared with every other implementation of this
// service: the canonical key is user_id + ":" + flag_name (case-sensitive,
// no normalization), hashed with SHA-256; the first 8 hex characters of the
// digest are parsed as an unsigned integer and reduced mod 100. Changing any
// of these constants silently re-buckets the entire user population.
const (
	bucketKeySeparator = ":"
	bucketDigestHexLen = 8
	bucketCount        = 100
)

// RolloutBucket returns the stable bucket in [0,99] for a user/flag pair.
func RolloutBucket(userID, flagName string) uint32 {
	sum := sha256.Sum256([]byte(userID + bucketKeySeparator + flagName))
	digest := hex.EncodeToString(sum[:])
	// the prefix of a hex digest always parses
	v, _ := strconv.ParseUint(digest[:bucketDigestHexLen], 16, 64)
	return uint32(v % bucketCount)
}

// EnabledForUser decides the outcome for one user against one flag. The
// master switch wins unconditionally; otherwise the user is in iff their
// bucket is strictly below the rollout percentage, so 0 means nobody and
// 100 means everybody.
func EnabledForUser(flag *domain.FeatureFlag, userID string) bool {
	if !flag.Enabled {
		return false
	}
	return float64(RolloutBucket(userID, flag.Name)) < flag.RolloutPercentage
}
