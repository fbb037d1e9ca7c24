package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/blockchain"
	"solana-honey-bot/internal/bot"
	"solana-honey-bot/internal/config"
	"solana-honey-bot/internal/copytrade"
	"solana-honey-bot/internal/health"
	"solana-honey-bot/internal/honey"
	"solana-honey-bot/internal/market"
	"solana-honey-bot/internal/orca"
	"solana-honey-bot/internal/status"
	"solana-honey-bot/internal/storage"
	"solana-honey-bot/internal/store"
	"solana-honey-bot/internal/trading"
)

const telegramAPIURL = "https://api.telegram.org"

func main() {
	setupLogger()
	log.Info().Msg("🍯 Honey Bot starting...")

	cfg, err := config.NewManager("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Storage
	users := store.Open(cfg.Get().Storage.UsersPath)
	journal, err := storage.OpenJournal(cfg.Get().Storage.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open trade journal")
	}
	defer journal.Close()

	// Market data
	marketClient := market.NewClient(market.Endpoints{
		Birdeye:   cfg.Get().Market.BirdeyeURL,
		PumpFun:   cfg.Get().Market.PumpFunURL,
		PumpCoins: cfg.Get().Market.PumpCoinsURL,
		Solscan:   cfg.Get().Market.SolscanURL,
		CoinGecko: cfg.Get().Market.CoinGeckoURL,
		TokenList: cfg.Get().Market.TokenListURL,
	}, cfg.MarketTimeout())
	marketClient.SetBirdeyeKey(cfg.BirdeyeAPIKey())
	lists := market.NewListCache(marketClient, cfg.ListTTL())

	// Trade path
	rpc := blockchain.NewRPCClient(cfg.RPCURL(), cfg.FallbackRPCURL())
	swaps := orca.NewClient(cfg.Get().Swap.BaseURL, cfg.Get().Swap.SlippageBps, cfg.SwapTimeout())
	executor := trading.NewExecutor(swaps, rpc, journal)

	// Telegram front end
	token := cfg.BotToken()
	if token == "" {
		log.Fatal().Str("env", cfg.Get().Telegram.TokenEnv).Msg("bot token env var not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram login failed")
	}
	tgBot := bot.New(api, users, lists, executor, rpc, api.Self.UserName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Staged take-profit engine
	engine := honey.NewEngine(users, marketClient, executor, tgBot)
	go engine.Start(ctx, cfg.HoneyInterval())

	// Copy trading over the websocket RPC. The bot still runs without it.
	if ws, err := copytrade.DialWS(cfg.WSURL()); err != nil {
		log.Warn().Err(err).Msg("websocket RPC unavailable, copy trading disabled")
	} else {
		defer ws.Close()
		monitor := copytrade.NewMonitor(ws, users, tgBot)
		go monitor.Start(ctx, cfg.CopyInterval())
	}

	// Operational endpoints
	checker := health.NewChecker(cfg.RPCURL(), telegramAPIURL, cfg.HealthInterval())
	checker.Start(ctx)

	statusSrv := status.NewServer(
		cfg.Get().Status.ListenHost,
		cfg.Get().Status.ListenPort,
		func() status.Stats {
			armed := 0
			for _, u := range users.HoneyUsers() {
				for _, t := range u.Tokens {
					if t.Armed() && !t.Exhausted() {
						armed++
					}
				}
			}
			trades, err := journal.TotalTrades()
			if err != nil {
				log.Warn().Err(err).Msg("journal count failed")
			}
			return status.Stats{
				Users:          users.Count(),
				ArmedPositions: armed,
				CachedTokens:   lists.Size(),
				TotalTrades:    trades,
				RPCLatencyMs:   rpc.LatencyMs(),
			}
		},
		checker.Healthy,
	)
	go func() {
		if err := statusSrv.Start(); err != nil {
			log.Error().Err(err).Msg("status server failed")
		}
	}()

	// Update loop
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	go tgBot.Run(ctx, api.GetUpdatesChan(updateCfg))

	log.Info().
		Str("bot", api.Self.UserName).
		Int("users", users.Count()).
		Msg("honey bot running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()
	statusSrv.Shutdown()
	users.Save()
	log.Info().Msg("goodbye 👋")
}

func setupLogger() {
	log.Logger = zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"},
	).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
