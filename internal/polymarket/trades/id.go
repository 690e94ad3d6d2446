/**
 * @description
 * Deterministic trade identifier. Re-purposes the teacher's go-ethereum
 * crypto dependency (used elsewhere for EIP-712 order signing) from signing
 * to content hashing: Keccak256 is already in the module graph, so trade
 * ids reuse it instead of pulling in a second hash primitive.
 *
 * @dependencies
 * - github.com/ethereum/go-ethereum/crypto
 * - encoding/hex
 */

package trades

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// ContentID computes the lowercase-hex Keccak256 of the pipe-joined content
// tuple (§4.1.7 step 4): asset|side|price|size|timestamp|transaction_hash|proxy_wallet.
// Re-ingesting identical content always yields the same id.
func ContentID(t Trade) string {
	payload := fmt.Sprintf("%s|%s|%g|%g|%d|%s|%s",
		t.Asset, t.Side, t.Price, t.Size, t.Timestamp, t.TransactionHash, t.ProxyWallet)
	hash := crypto.Keccak256([]byte(payload))
	return hex.EncodeToString(hash)
}
