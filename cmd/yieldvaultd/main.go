package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yieldvault/config"
	"yieldvault/core"
	"yieldvault/core/events"
	"yieldvault/core/state"
	"yieldvault/observability/logging"
	"yieldvault/rpc"
	"yieldvault/storage"
)

const eventTailLimit = 4096

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.Setup("yieldvaultd", cfg.Env)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	recorder := events.NewRecorder(eventTailLimit)
	processor := core.NewProcessor(state.NewManager(db), recorder)

	genesis, err := buildGenesis(cfg.Genesis)
	if err != nil {
		logger.Error("Invalid genesis configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := processor.ApplyGenesis(*genesis); err != nil {
		logger.Error("Failed to apply genesis", slog.Any("error", err))
		os.Exit(1)
	}

	epoch, err := processor.RewardsEngine().CurrentEpoch()
	if err != nil {
		logger.Error("Failed to read current epoch", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Vault state ready",
		slog.String("dataDir", cfg.DataDir),
		slog.Uint64("epoch", epoch),
	)

	rpcServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           rpc.NewServer(processor, recorder, cfg.RPCAuthToken, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("RPC server listening", slog.String("address", cfg.RPCAddress))
		if err := rpcServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("rpc server: %w", err)
		}
	}()
	go func() {
		logger.Info("Metrics server listening", slog.String("address", cfg.MetricsAddress))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server failure", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("RPC shutdown failed", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics shutdown failed", slog.Any("error", err))
	}
	logger.Info("Shutdown complete")
}

func buildGenesis(cfg config.Genesis) (*core.Genesis, error) {
	admin, err := parseAddress(cfg.Admin)
	if err != nil {
		return nil, fmt.Errorf("genesis admin: %w", err)
	}
	genesis := &core.Genesis{Admin: admin}
	for i, raw := range cfg.Depositors {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("genesis depositor %d: %w", i, err)
		}
		genesis.Depositors = append(genesis.Depositors, addr)
	}
	for i, raw := range cfg.Creators {
		addr, err := parseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("genesis creator %d: %w", i, err)
		}
		genesis.Creators = append(genesis.Creators, addr)
	}
	for i, account := range cfg.Accounts {
		addr, err := parseAddress(account.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis account %d: %w", i, err)
		}
		vlt, err := parseBalance(account.VLT)
		if err != nil {
			return nil, fmt.Errorf("genesis account %d VLT: %w", i, err)
		}
		usdt, err := parseBalance(account.USDT)
		if err != nil {
			return nil, fmt.Errorf("genesis account %d USDT: %w", i, err)
		}
		native, err := parseBalance(account.Native)
		if err != nil {
			return nil, fmt.Errorf("genesis account %d Native: %w", i, err)
		}
		genesis.Accounts = append(genesis.Accounts, core.GenesisAccount{
			Address: addr,
			VLT:     vlt,
			USDT:    usdt,
			Native:  native,
		})
	}
	return genesis, nil
}

func parseAddress(raw string) ([20]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if !gethcommon.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address %q", raw)
	}
	return gethcommon.HexToAddress(trimmed), nil
}

func parseBalance(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid balance %q", raw)
	}
	return amount, nil
}
