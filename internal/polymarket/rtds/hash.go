/**
 * @description
 * Stable token->shard assignment. FNV-1a 32-bit mod N so a token always
 * lands on the same shard across restarts (§4.2.2).
 *
 * @dependencies
 * - hash/fnv
 */

package rtds

import "hash/fnv"

// ShardFor returns the shard index in [0, n) for tokenID.
func ShardFor(tokenID string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(tokenID))
	return int(h.Sum32() % uint32(n))
}
