package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/iurnickita/grabmarket/internal/auth"
	"github.com/iurnickita/grabmarket/internal/bus"
	"github.com/iurnickita/grabmarket/internal/config"
	"github.com/iurnickita/grabmarket/internal/directory"
	"github.com/iurnickita/grabmarket/internal/handler"
	"github.com/iurnickita/grabmarket/internal/ledger/rpc"
	"github.com/iurnickita/grabmarket/internal/logger"
	"github.com/iurnickita/grabmarket/internal/settlement"
	"github.com/iurnickita/grabmarket/internal/store"
	"github.com/iurnickita/grabmarket/internal/wallet"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.GetConfig()

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}

	wallet, err := wallet.NewKeypair(cfg.WalletSeed)
	if err != nil {
		return err
	}

	ledgerClient := rpc.NewClient(cfg.LedgerEndpoint)
	eventBus := bus.NewBus()
	auth := auth.NewAuth(cfg.JWTSecret)
	directory := directory.NewDirectory(cfg.DirectoryAddr)
	settlement := settlement.NewService(cfg.Settlement, store, ledgerClient, wallet, eventBus, zaplog)

	// оплаченные, но не оформленные заказы требуют ручного вмешательства
	unsettled, err := store.OrderGetUnsettled(context.Background())
	if err != nil {
		return err
	}
	if len(unsettled) > 0 {
		zaplog.Warn("charged but unsettled orders in journal",
			zap.Int("count", len(unsettled)))
	}

	go notifyLoop(eventBus, zaplog)

	return handler.Serve(cfg.Handler, auth, settlement, directory, zaplog)
}

// notifyLoop - подписчик шины событий вместо всплывающих уведомлений UI
func notifyLoop(eventBus bus.Bus, zaplog *zap.Logger) {
	const subscriber = "notifylog"
	events := eventBus.Subscribe(subscriber)
	defer eventBus.Unsubscribe(subscriber)

	for event := range events {
		zaplog.Info("settlement event",
			zap.String("order", event.Order),
			zap.String("customer", event.Customer),
			zap.String("state", event.State),
			zap.String("message", event.Message),
		)
	}
}
