package main

import (
	"flag"
	"log/slog"

	"autopier/bot"
	"autopier/impl/core"
	"autopier/internal/config"
	repository "autopier/internal/database"
	"autopier/internal/filestore"
	"autopier/internal/http-server/api"
	"autopier/internal/lib/logger"
	"autopier/internal/lib/sl"
	"autopier/internal/pgstore"
	"autopier/internal/service/catalog"
	"autopier/internal/service/chat"
	"autopier/internal/service/negotiation"
	"autopier/internal/service/order"
	"autopier/internal/service/stats"
	"autopier/internal/service/typing"
)

// storage is the union of the per-service repository contracts, which
// every backend implements in full.
type storage interface {
	negotiation.Repository
	order.Repository
	chat.Repository
	stats.Repository
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Push error-level records to the operator chat when enabled.
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.Info("telegram notifications initialized")
		}
	}

	lg.Info("starting autopier", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	var store storage
	switch conf.Storage.Mode {
	case config.StorageMongo:
		db, err := repository.NewMongoClient(conf, lg)
		if err != nil {
			lg.With(sl.Err(err)).Error("mongo client")
			return
		}
		ensureIndexes(db, lg)
		store = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	case config.StoragePostgres:
		db, err := pgstore.New(conf.Postgres.DSN, lg)
		if err != nil {
			lg.With(sl.Err(err)).Error("postgres client")
			return
		}
		store = db
		lg.Info("postgres client initialized")
	default:
		fs, err := filestore.New(conf.Storage.DataDir, lg)
		if err != nil {
			lg.With(sl.Err(err)).Error("file store")
			return
		}
		store = fs
		lg.With(slog.String("dir", conf.Storage.DataDir)).Info("file store initialized")
	}

	var typingStore typing.Store
	if conf.Redis.Enabled {
		rs, err := typing.NewRedisStore(conf.Redis.URL)
		if err != nil {
			lg.With(sl.Err(err)).Error("redis typing store")
			return
		}
		typingStore = rs
		lg.Info("redis typing store initialized")
	} else {
		typingStore = typing.NewMemoryStore()
	}
	defer typingStore.Close()

	catalogService := catalog.NewCatalogService(lg)

	chatService := chat.NewChatService(lg)
	chatService.SetRepository(store)

	negotiationService := negotiation.NewNegotiationService(lg, conf.Dealership.Name)
	negotiationService.SetRepository(store)
	negotiationService.SetCatalog(catalogService)
	negotiationService.SetSessions(chatService)

	orderService := order.NewOrderService(lg)
	orderService.SetRepository(store)
	orderService.SetCatalog(catalogService)
	orderService.SetSessions(chatService)

	statsService := stats.NewStatsService(lg)
	statsService.SetRepository(store)

	handler := core.New(lg)
	handler.SetApiKey(conf.Listen.ApiKey)
	handler.SetCatalogService(catalogService)
	handler.SetChatService(chatService)
	handler.SetNegotiationService(negotiationService)
	handler.SetOrderService(orderService)
	handler.SetStatsService(statsService)
	handler.SetTypingStore(typingStore)

	// *** blocking start with http server ***
	if err := api.New(conf, lg, handler); err != nil {
		lg.With(sl.Err(err)).Error("api server stopped")
	}
}

func ensureIndexes(db *repository.MongoDB, lg *slog.Logger) {
	for name, ensure := range map[string]func() error{
		"orders":        db.EnsureOrderIndexes,
		"negotiations":  db.EnsureNegotiationIndexes,
		"messages":      db.EnsureMessageIndexes,
		"chat-sessions": db.EnsureChatSessionIndexes,
	} {
		if err := ensure(); err != nil {
			lg.With(slog.String("collection", name), sl.Err(err)).Error("ensure indexes")
		}
	}
}
