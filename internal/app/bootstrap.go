package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"
	"dex_go/internal/infra/dex"
	"dex_go/internal/infra/storage"

	"github.com/joho/godotenv"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Downloader *infra.IconDownloader
	Client     *dex.Client
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, Dir, etc.)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping DexGo...")

	// 1. Load .env for local secret overrides (ignored when absent)
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env overrides")
	}

	// 2. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 3. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 4. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 5. Initialize Icon Downloader
	downloader, err := infra.NewIconDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Icon downloader ready")

	// 6. Exchange REST client
	b.Client = dex.NewClient(cfg)
	slog.Info("✅ Exchange client ready", slog.String("url", cfg.Exchange.RestURL))

	return nil
}

// SyncAssets refreshes the denom metadata cache from the live market listing
// and fetches missing token icons in the background. Swap execution does not
// depend on this; it only feeds display metadata.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	markets, err := b.Client.ListMarkets(ctx)
	if err != nil {
		slog.Warn("Asset sync skipped, market listing unavailable", slog.Any("error", err))
		return
	}

	// One metadata row per unique denom; the first market naming a denom wins,
	// mirroring market resolution order.
	type denomInfo struct {
		symbol   string
		decimals int
	}
	denoms := make(map[string]denomInfo)
	for _, m := range markets {
		base, quote := splitTicker(m.Ticker)
		if _, seen := denoms[m.BaseDenom]; !seen {
			denoms[m.BaseDenom] = denomInfo{symbol: base, decimals: m.BaseDecimals}
		}
		if _, seen := denoms[m.QuoteDenom]; !seen {
			denoms[m.QuoteDenom] = denomInfo{symbol: quote, decimals: m.QuoteDecimals}
		}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for denom, info := range denoms {
		wg.Add(1)
		go func(denom string, info denomInfo) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			meta := &domain.DenomMeta{
				Denom:    denom,
				Symbol:   info.symbol,
				Decimals: info.decimals,
				IsActive: true,
			}

			// Preserve the icon and sync time of an existing row
			if existing, _ := b.Storage.GetDenom(denom); existing != nil {
				meta.IconPath = existing.IconPath
				meta.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertDenom(meta); err != nil {
				slog.Error("Failed to upsert denom", slog.String("denom", denom), slog.Any("error", err))
				return
			}

			if meta.IconPath != "" || info.symbol == "" {
				return
			}
			path, err := b.Downloader.DownloadIcon(info.symbol)
			if err != nil {
				slog.Warn("Failed to download icon", slog.String("symbol", info.symbol), slog.Any("error", err))
				return
			}
			meta.IconPath = path
			meta.LastSyncedAt = time.Now()
			if err := b.Storage.UpsertDenom(meta); err != nil {
				slog.Error("Failed to record icon path", slog.String("denom", denom), slog.Any("error", err))
			}
		}(denom, info)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}

// splitTicker extracts the base and quote display symbols from a pair label
// like "INJ/USDT". Unlabeled markets yield empty symbols and skip icon sync.
func splitTicker(ticker string) (base, quote string) {
	parts := strings.SplitN(ticker, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
