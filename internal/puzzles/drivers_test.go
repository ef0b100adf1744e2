package puzzles

import (
	"bytes"
	"testing"

	"bridge-core/pkg/clvm"
	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLauncher = common.BytesToHash(bytes.Repeat([]byte{0x33}, 32))
	testContract = bytes.Repeat([]byte{0x44}, 20)
	testTail     = common.BytesToHash(bytes.Repeat([]byte{0x55}, 32))
)

func testDrivers() *Drivers {
	s := NewStore()
	s.Pin(MessageCoinMod, common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)))
	s.Pin(BridgingPuzzle, common.BytesToHash(bytes.Repeat([]byte{0x22}, 32)))
	return NewDrivers(s)
}

// Reference vectors computed independently from the published template hashes.
func TestPuzzleHashVectors(t *testing.T) {
	d := testDrivers()

	msg, err := d.MessageCoinPuzzle1stCurryHash(testLauncher)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("d532d4701cc332a9e48e9dbda56077075e1021d86a7a2a0863363afa910366ee"), msg)

	tests := []struct {
		name     string
		asset    AssetRef
		unlocker string
		vault    string
		locker   string
	}{
		{"native", NativeAsset(),
			"102ff9b2f177e9702678b848d7315a070083aa792af43362e194a27ceec969ac",
			"1156ed92a89bf3d062c380380a9abb972233afee0537b3a52c7a0a6860931d1e",
			"a9a99b9965d671d4e8910b8270f613aecdba885b2c604af2144d6dfa6a1b908c"},
		{"token", TokenAsset(testTail),
			"19ea521b521b2962c2bc8dcd26fb3adf3852afa5438a92de78669e614f4961a3",
			"034a4e28a075c10e606f9337f4f2e15f9e417ae1fc484a90459c1c9a8289a77d",
			"577ff7fc75705fce1d8a4b2b8aee3342b62bfab7aa027348690dd1846453b537"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, unlocker, err := d.UnlockerPuzzle("bse", testContract, testLauncher, tt.asset)
			require.NoError(t, err)
			assert.Equal(t, common.HexToHash(tt.unlocker), unlocker)

			vault, err := d.VaultPuzzleHash("bse", testContract, testLauncher, tt.asset)
			require.NoError(t, err)
			assert.Equal(t, common.HexToHash(tt.vault), vault)

			locker, lockerHash, err := d.LockerPuzzle("bse", testContract, testLauncher, tt.asset)
			require.NoError(t, err)
			assert.Equal(t, common.HexToHash(tt.locker), lockerHash)
			assert.Equal(t, lockerHash, locker.TreeHash())
		})
	}
}

func TestLockerCurriedArguments(t *testing.T) {
	d := testDrivers()
	locker, _, err := d.LockerPuzzle("bse", testContract, testLauncher, TokenAsset(testTail))
	require.NoError(t, err)

	mod, args, ok := clvm.Uncurry(locker)
	require.True(t, ok)
	lockerTpl, _ := d.Templates().Lookup(LockerMod)
	assert.True(t, mod.Equal(lockerTpl.Program))
	require.Len(t, args, 7)

	assert.True(t, args[0].Equal(clvm.String("bse")))
	assert.True(t, args[1].Equal(clvm.Atom(testContract)))
	assert.True(t, args[2].Equal(clvm.Hash(CATModHash)))
	assert.True(t, args[3].Equal(clvm.Hash(OfferModHash)))
	assert.True(t, args[6].Equal(clvm.Hash(testTail)))

	// hash(p2_controller(hash(unlocker)))
	_, unlockerHash, err := d.UnlockerPuzzle("bse", testContract, testLauncher, TokenAsset(testTail))
	require.NoError(t, err)
	_, vault, err := d.P2ControllerPuzzleHashInnerPuzzle(unlockerHash)
	require.NoError(t, err)
	assert.True(t, args[5].Equal(clvm.Hash(vault)))
	assert.Equal(t, clvm.CurryTreeHash(P2ControllerPuzzleHashModHash, clvm.AtomHash(unlockerHash[:])), vault)
}

func TestUnlockerCurriedArguments(t *testing.T) {
	d := testDrivers()
	unlocker, _, err := d.UnlockerPuzzle("bse", testContract, testLauncher, NativeAsset())
	require.NoError(t, err)

	_, args, ok := clvm.Uncurry(unlocker)
	require.True(t, ok)
	require.Len(t, args, 6)
	assert.True(t, args[1].Equal(clvm.Hash(P2ControllerPuzzleHashModHash)))
	assert.True(t, args[3].Equal(clvm.String("bse")))
	assert.True(t, args[4].Equal(clvm.Hash(clvm.AtomHash(testContract))))
	assert.True(t, args[5].IsNil())
}

func TestPuzzlesDeterministic(t *testing.T) {
	d := testDrivers()
	a, _, err := d.LockerPuzzle("bse", testContract, testLauncher, NativeAsset())
	require.NoError(t, err)
	b, _, err := testDrivers().LockerPuzzle("bse", testContract, testLauncher, NativeAsset())
	require.NoError(t, err)
	assert.Equal(t, a.Serialize(), b.Serialize())
}

func TestLockerNeedsBridgingTemplate(t *testing.T) {
	d := NewDrivers(NewStore())
	_, _, err := d.LockerPuzzle("bse", testContract, testLauncher, NativeAsset())
	assert.ErrorIs(t, err, errno.ErrInvalidTemplate)

	_, _, err = testDrivers().LockerPuzzle("", testContract, testLauncher, NativeAsset())
	assert.ErrorIs(t, err, errno.ErrEncoding)
}

func TestCATPuzzleHash(t *testing.T) {
	d := testDrivers()
	standIn := clvm.List(clvm.Uint(2), clvm.Uint(5))
	d.Templates().Register(CATMod, standIn)
	inner := clvm.List(clvm.Uint(1))

	p, h, err := d.CATPuzzle(testTail, inner)
	require.NoError(t, err)
	assert.Equal(t, p.TreeHash(), h)

	byHash, err := d.CATPuzzleHash(testTail, inner.TreeHash())
	require.NoError(t, err)
	assert.Equal(t, h, byHash)
}

func TestParseAssetRef(t *testing.T) {
	for _, in := range []string{"", "xch", "XCH", "0x" + common.Hash{}.Hex()[2:]} {
		a, err := ParseAssetRef(in)
		require.NoError(t, err, in)
		assert.True(t, a.IsNative(), in)
	}
	a, err := ParseAssetRef(testTail.Hex()[2:])
	require.NoError(t, err)
	assert.Equal(t, TokenAsset(testTail), a)

	_, err = ParseAssetRef("0x1234")
	assert.ErrorIs(t, err, errno.ErrEncoding)
}
