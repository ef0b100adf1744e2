package bridge

import (
	"fmt"

	"bridge-core/internal/offer"
	"bridge-core/internal/portal"
	"bridge-core/internal/puzzles"
	"bridge-core/pkg/config"
	"bridge-core/pkg/kms"
	"bridge-core/pkg/logger"

	"go.uber.org/zap"
)

// NewFromConfig builds a Builder from the coinset section: network parameters,
// pinned template hashes and the templates directory. Offers are read with the
// JSON parser and security keys go to keys.
func NewFromConfig(cfg config.CoinsetConfig, keys kms.KeyManager) (*Builder, error) {
	network, err := cfg.Network()
	if err != nil {
		return nil, err
	}

	store := puzzles.NewStore()
	// 先 pin 再加载, 目录里的字节必须和配置的 hash 一致
	pins := []struct{ name, value string }{
		{puzzles.MessageCoinMod, cfg.MessageCoinModHash},
		{puzzles.BridgingPuzzle, cfg.BridgingPuzzleHash},
	}
	for _, p := range pins {
		if p.value == "" {
			continue
		}
		h, err := config.ParseHash(p.value)
		if err != nil {
			return nil, fmt.Errorf("coinset %s hash: %w", p.name, err)
		}
		store.Pin(p.name, h)
	}

	loaded, err := store.LoadDir(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates from %q: %w", cfg.TemplatesDir, err)
	}
	logger.Info("puzzle templates loaded", zap.String("dir", cfg.TemplatesDir), zap.Strings("loaded", loaded))

	// 启动时就检查, 避免第一笔 lock 才失败
	if _, err := store.Lookup(puzzles.MessageCoinMod); err != nil {
		return nil, err
	}
	required := []string{puzzles.BridgingPuzzle}
	if !cfg.NativeOnly {
		required = append(required, puzzles.CATMod, puzzles.OfferMod)
	}
	for _, name := range required {
		if _, err := store.Program(name); err != nil {
			return nil, err
		}
	}

	return NewBuilder(network, puzzles.NewDrivers(store), offer.NewJSONParser(keys), portal.New(store, keys), WithKeyRelease(keys)), nil
}
