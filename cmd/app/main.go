package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dex_go/internal/app"
	"dex_go/internal/execution"
	"dex_go/internal/infra/dex"
	"dex_go/internal/service"
	"dex_go/internal/swap"

	"github.com/shopspring/decimal"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	fromDenom := flag.String("from", "", "denom to swap from")
	toDenom := flag.String("to", "", "denom to swap to")
	amount := flag.String("amount", "", "human-scale amount to swap")
	slippage := flag.String("slippage", "", "slippage tolerance in percent (default from config)")
	flag.Parse()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Execution collaborators for the configured mode
	factory := execution.NewFactory(cfg, bootstrap.Client)
	broadcaster, err := factory.CreateBroadcaster()
	if err != nil {
		slog.Error("❌ Execution setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	wallet, err := factory.CreateWallet()
	if err != nil {
		slog.Error("❌ Wallet setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Swap pipeline
	seed := cfg.Trading.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := swap.NewSimulator(rand.New(rand.NewSource(seed)))

	orchestrator := swap.NewOrchestrator(bootstrap.Client, wallet, broadcaster, sim, swap.Options{
		Journal:      bootstrap.Storage,
		StageTimeout: time.Duration(cfg.Trading.StageTimeoutSec) * time.Second,
	})

	// One-shot mode: execute a single swap and exit.
	if *fromDenom != "" && *toDenom != "" && *amount != "" {
		runSwap(ctx, orchestrator, cfg.Trading.DefaultSlippagePct, *fromDenom, *toDenom, *amount, *slippage)
		return
	}

	// 6. Service mode: background asset sync and live price stream
	go bootstrap.SyncAssets(ctx)

	prices := service.NewPriceService()
	prices.StartProcessor(ctx)

	if cfg.Stream.Enabled && len(cfg.Stream.Markets) > 0 {
		worker := dex.NewStreamWorker(cfg.Exchange.WSURL, cfg.Stream.Markets, prices)
		if err := worker.Connect(ctx); err != nil {
			slog.Error("Failed to start price stream", slog.Any("error", err))
		}
		defer worker.Disconnect()
		slog.InfoContext(ctx, "✅ StreamWorker started", slog.Int("markets", len(cfg.Stream.Markets)))
	}

	slog.InfoContext(ctx, "✨ DexGo fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}

func runSwap(ctx context.Context, o *swap.Orchestrator, defaultSlippage decimal.Decimal, from, to, amountStr, slippageStr string) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		slog.Error("Invalid amount", slog.String("amount", amountStr))
		os.Exit(1)
	}

	slippagePct := defaultSlippage
	if slippageStr != "" {
		slippagePct, err = decimal.NewFromString(slippageStr)
		if err != nil {
			slog.Error("Invalid slippage", slog.String("slippage", slippageStr))
			os.Exit(1)
		}
	}

	res, err := o.Swap(ctx, swap.Request{
		FromDenom:   from,
		ToDenom:     to,
		Amount:      amount,
		SlippagePct: slippagePct,
	})
	if err != nil {
		slog.Error("❌ Swap rejected", slog.Any("error", err))
		os.Exit(1)
	}

	label := "EXECUTED"
	if res.IsSimulated {
		label = "SIMULATED"
	}
	fmt.Printf("[%s] %s %s -> est. %s %s @ %s (tx: %s)\n",
		label, res.InputAmount, res.FromDenom, res.EstimatedOutput, res.ToDenom,
		res.ExecutionPrice, res.TxHash)
}
