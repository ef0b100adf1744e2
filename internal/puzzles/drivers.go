package puzzles

import (
	"fmt"

	"bridge-core/pkg/clvm"
	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
)

// Drivers builds the bridge puzzles from a template store.
type Drivers struct {
	templates *Store
}

// NewDrivers returns drivers backed by store.
func NewDrivers(store *Store) *Drivers {
	return &Drivers{templates: store}
}

// Templates exposes the underlying store.
func (d *Drivers) Templates() *Store { return d.templates }

func (d *Drivers) hash(name string) (common.Hash, error) {
	t, err := d.templates.Lookup(name)
	if err != nil {
		return common.Hash{}, err
	}
	return t.Hash, nil
}

// MessageCoinPuzzle1stCurryHash is the hash of the message-coin template curried
// with the singleton struct (SINGLETON_MOD_HASH . (launcher_id . LAUNCHER_HASH))
// of the portal receiving the messages.
func (d *Drivers) MessageCoinPuzzle1stCurryHash(launcherID common.Hash) (common.Hash, error) {
	singletonMod, err := d.hash(SingletonTopLayerMod)
	if err != nil {
		return common.Hash{}, err
	}
	launcher, err := d.hash(SingletonLauncher)
	if err != nil {
		return common.Hash{}, err
	}
	singletonStruct := clvm.Cons(clvm.Hash(singletonMod), clvm.Cons(clvm.Hash(launcherID), clvm.Hash(launcher)))
	return d.templates.CurryHash(MessageCoinMod, singletonStruct.TreeHash())
}

// P2ControllerPuzzleHashInnerPuzzle curries the p2-controller template with the
// puzzle hash of the coin allowed to control spends.
func (d *Drivers) P2ControllerPuzzleHashInnerPuzzle(controllerPuzzleHash common.Hash) (*clvm.Program, common.Hash, error) {
	return d.templates.Curry(P2ControllerPuzzleHashMod, clvm.Hash(controllerPuzzleHash))
}

// UnlockerPuzzle builds the puzzle that releases locked assets when a message
// from (sourceChain, sourceAddress) reaches the portal identified by launcherID.
func (d *Drivers) UnlockerPuzzle(sourceChain string, sourceAddress []byte, launcherID common.Hash, asset AssetRef) (*clvm.Program, common.Hash, error) {
	if err := checkRoute(sourceChain, sourceAddress); err != nil {
		return nil, common.Hash{}, err
	}
	catModHash, err := d.hash(CATMod)
	if err != nil {
		return nil, common.Hash{}, err
	}
	p2ModHash, err := d.hash(P2ControllerPuzzleHashMod)
	if err != nil {
		return nil, common.Hash{}, err
	}
	messageCoinHash, err := d.MessageCoinPuzzle1stCurryHash(launcherID)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return d.templates.Curry(UnlockerMod,
		clvm.Hash(catModHash),
		clvm.Hash(p2ModHash),
		clvm.Hash(messageCoinHash),
		clvm.String(sourceChain),
		clvm.Hash(clvm.AtomHash(sourceAddress)),
		asset.Program(),
	)
}

// VaultPuzzleHash is the puzzle hash locked assets are paid to: the
// p2-controller puzzle controlled by the matching unlocker.
func (d *Drivers) VaultPuzzleHash(chain string, address []byte, launcherID common.Hash, asset AssetRef) (common.Hash, error) {
	_, unlockerHash, err := d.UnlockerPuzzle(chain, address, launcherID, asset)
	if err != nil {
		return common.Hash{}, err
	}
	_, vault, err := d.P2ControllerPuzzleHashInnerPuzzle(unlockerHash)
	return vault, err
}

// LockerPuzzle builds the puzzle that locks assets and emits a message for
// (destinationChain, destinationAddress) through the portal at launcherID.
func (d *Drivers) LockerPuzzle(destinationChain string, destinationAddress []byte, launcherID common.Hash, asset AssetRef) (*clvm.Program, common.Hash, error) {
	if err := checkRoute(destinationChain, destinationAddress); err != nil {
		return nil, common.Hash{}, err
	}
	catModHash, err := d.hash(CATMod)
	if err != nil {
		return nil, common.Hash{}, err
	}
	offerModHash, err := d.hash(OfferMod)
	if err != nil {
		return nil, common.Hash{}, err
	}
	bridgingHash, err := d.hash(BridgingPuzzle)
	if err != nil {
		return nil, common.Hash{}, err
	}
	// 解锁方向的消息来源就是本次锁定的目标合约
	vault, err := d.VaultPuzzleHash(destinationChain, destinationAddress, launcherID, asset)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return d.templates.Curry(LockerMod,
		clvm.String(destinationChain),
		clvm.Atom(destinationAddress),
		clvm.Hash(catModHash),
		clvm.Hash(offerModHash),
		clvm.Hash(bridgingHash),
		clvm.Hash(vault),
		asset.Program(),
	)
}

// CATPuzzle wraps inner in the CAT layer for tail.
func (d *Drivers) CATPuzzle(tail common.Hash, inner *clvm.Program) (*clvm.Program, common.Hash, error) {
	catModHash, err := d.hash(CATMod)
	if err != nil {
		return nil, common.Hash{}, err
	}
	return d.templates.Curry(CATMod, clvm.Hash(catModHash), clvm.Hash(tail), inner)
}

// CATPuzzleHash is the hash of CATPuzzle(tail, inner) given only inner's hash.
func (d *Drivers) CATPuzzleHash(tail, innerPuzzleHash common.Hash) (common.Hash, error) {
	catModHash, err := d.hash(CATMod)
	if err != nil {
		return common.Hash{}, err
	}
	return d.templates.CurryHash(CATMod, clvm.AtomHash(catModHash[:]), clvm.AtomHash(tail[:]), innerPuzzleHash)
}

func checkRoute(chain string, address []byte) error {
	if chain == "" {
		return fmt.Errorf("%w: empty chain id", errno.ErrEncoding)
	}
	if len(address) == 0 {
		return fmt.Errorf("%w: empty address for chain %s", errno.ErrEncoding, chain)
	}
	return nil
}
