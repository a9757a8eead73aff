package config

import (
	"flag"
	"os"
	"strconv"

	handlerConfig "github.com/iurnickita/grabmarket/internal/handler/config"
	loggerConfig "github.com/iurnickita/grabmarket/internal/logger/config"
	settlementConfig "github.com/iurnickita/grabmarket/internal/settlement/config"
	storeConfig "github.com/iurnickita/grabmarket/internal/store/config"
)

type Config struct {
	Handler    handlerConfig.Config
	Settlement settlementConfig.Config
	Store      storeConfig.Config
	Logger     loggerConfig.Config

	DirectoryAddr  string
	LedgerEndpoint string
	JWTSecret      string
	WalletSeed     string
}

func GetConfig() Config {
	var cfg Config

	flag.StringVar(&cfg.Handler.ServerAddr, "a", "localhost:8080", "server address")
	flag.StringVar(&cfg.Store.DBDsn, "d", "", "database dsn")
	flag.StringVar(&cfg.Logger.LogLevel, "l", "info", "log level")
	flag.StringVar(&cfg.Settlement.OrderServiceAddr, "o", "http://localhost:8081", "order service address")
	flag.StringVar(&cfg.DirectoryAddr, "r", "http://localhost:8081", "restaurant directory address")
	flag.StringVar(&cfg.LedgerEndpoint, "n", "http://localhost:8899", "ledger node endpoint")
	flag.StringVar(&cfg.Settlement.Asset, "m", "", "payment asset address")
	flag.Parse()

	if envServerAddr := os.Getenv("RUN_ADDRESS"); envServerAddr != "" {
		cfg.Handler.ServerAddr = envServerAddr
	}
	if envDBDsn := os.Getenv("DATABASE_URI"); envDBDsn != "" {
		cfg.Store.DBDsn = envDBDsn
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		cfg.Logger.LogLevel = envLogLevel
	}
	if envOrderAddr := os.Getenv("ORDER_SERVICE_ADDRESS"); envOrderAddr != "" {
		cfg.Settlement.OrderServiceAddr = envOrderAddr
	}
	if envDirectoryAddr := os.Getenv("DIRECTORY_ADDRESS"); envDirectoryAddr != "" {
		cfg.DirectoryAddr = envDirectoryAddr
	}
	if envLedgerEndpoint := os.Getenv("LEDGER_ENDPOINT"); envLedgerEndpoint != "" {
		cfg.LedgerEndpoint = envLedgerEndpoint
	}
	if envAsset := os.Getenv("ASSET_ADDRESS"); envAsset != "" {
		cfg.Settlement.Asset = envAsset
	}

	cfg.Settlement.AssetDecimals = 6
	if envDecimals := os.Getenv("ASSET_DECIMALS"); envDecimals != "" {
		if decimals, err := strconv.Atoi(envDecimals); err == nil {
			cfg.Settlement.AssetDecimals = int32(decimals)
		}
	}
	cfg.Settlement.Commitment = "confirmed"
	cfg.Settlement.MaxAttempts = 3
	cfg.Settlement.SendMaxRetries = 3

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.WalletSeed = os.Getenv("WALLET_SEED")

	return cfg
}
