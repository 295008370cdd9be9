package motion

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"
)

// VoteHash computes the audit digest stored with each ballot. Only a party
// holding the original inputs (token id included) can recompute it and tie
// a ballot back to its voter; the vote record itself carries no citizen
// column. The choice is encoded as "1"/"0" and the timestamp as RFC 3339
// in UTC so the digest is reproducible byte for byte.
func VoteHash(tokenID, motionID uint64, identity string, choice bool, at time.Time, ip string) string {
	bit := "0"
	if choice {
		bit = "1"
	}
	sum := sha512.Sum512([]byte(fmt.Sprintf(
		"%d#%d#%s#%s#%s#%s",
		tokenID, motionID, identity, bit, at.UTC().Format(time.RFC3339), ip,
	)))
	return hex.EncodeToString(sum[:])
}
