package address

import (
	"fmt"

	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// ParseEVM parses a 0x-prefixed 20-byte address. The zero address is rejected
// because nothing can be minted to it.
func ParseEVM(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errno.ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", errno.ErrInvalidAddress)
	}
	return addr, nil
}
