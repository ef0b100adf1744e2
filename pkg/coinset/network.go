package coinset

import "github.com/ethereum/go-ethereum/common"

// Network describes the coin-set chain the bridge builds transactions for.
type Network struct {
	// ChainID is the bridge-level identifier of this chain, e.g. "xch".
	ChainID string
	// MessageToll is the fixed amount the bridge charges to relay one message.
	MessageToll uint64
	// PortalLauncherID identifies the portal singleton receiving messages.
	PortalLauncherID common.Hash
	// AggSigData is appended to every AGG_SIG_ME message (the genesis challenge).
	AggSigData []byte
	// RPCURL is the full-node endpoint used for submission.
	RPCURL string
}
