// Package bootstrap wires configuration into the services shared by the API server and stockexctl.
package bootstrap

import (
	"context"
	"errors"

	"stockex-backend/internal/application/allotment"
	emailsvc "stockex-backend/internal/application/emails"
	healthsvc "stockex-backend/internal/application/health"
	iposvc "stockex-backend/internal/application/ipo"
	notifsvc "stockex-backend/internal/application/notifications"
	portfoliosvc "stockex-backend/internal/application/portfolio"
	stocksvc "stockex-backend/internal/application/stocks"
	tradesvc "stockex-backend/internal/application/trading"
	txsvc "stockex-backend/internal/application/transactions"
	usersvc "stockex-backend/internal/application/user"
	"stockex-backend/internal/config"
	"stockex-backend/internal/infrastructure/broker"
	"stockex-backend/internal/infrastructure/database"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/scheduler"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const memoryQueueSize = 1024

// Services is the composed application. Rdb and Broker are nil when not configured.
type Services struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	Broker *broker.StompPublisher

	Users         *usersvc.Service
	Stocks        *stocksvc.Service
	Rounds        *iposvc.Service
	Allotment     *allotment.Service
	Portfolio     *portfoliosvc.Service
	Trading       *tradesvc.Service
	Transactions  *txsvc.Service
	Notifications *notifsvc.Service

	Queue     notifsvc.Queue
	Worker    *notifsvc.Worker
	Trigger   *scheduler.Trigger
	Scheduler *scheduler.Scheduler
	Health    *healthsvc.Collector
}

// New opens the database and Redis and builds every service. DATABASE_URL is required.
func New(cfg *config.Config) (*Services, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	s := &Services{Config: cfg, DB: db}

	if cfg.RedisURL != "" {
		rdb, err := middleware.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s.Rdb = rdb
	}

	policy, err := allotment.NewPolicy(cfg.Allotment.Policy, cfg.Allotment.LotSize, cfg.Allotment.MaxPerApplicant)
	if err != nil {
		return nil, err
	}

	mailer := &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}

	if s.Rdb != nil {
		s.Queue = notifsvc.NewRedisQueue(s.Rdb)
	} else {
		log.Warn().Msg("REDIS_URL not set, notifications use an in-process queue")
		s.Queue = notifsvc.NewMemoryQueue(memoryQueueSize)
	}
	sinks := []notifsvc.Sink{
		&notifsvc.DBSink{DB: db},
		&notifsvc.EmailSink{DB: db, Sender: mailer},
	}
	if cfg.StompAddr != "" {
		s.Broker = broker.NewStompPublisher(cfg.StompAddr, cfg.StompDestination)
		sinks = append(sinks, s.Broker)
	}
	s.Worker = &notifsvc.Worker{
		Queue:       s.Queue,
		Sinks:       sinks,
		MaxAttempts: cfg.Notifications.MaxAttempts,
		RetryDelay:  cfg.Notifications.RetryDelay,
	}

	s.Portfolio = &portfoliosvc.Service{DB: db}
	s.Users = &usersvc.Service{DB: db, InitialCash: cfg.InitialCash, Welcome: mailer}
	s.Stocks = &stocksvc.Service{DB: db}
	s.Rounds = &iposvc.Service{DB: db, LotSize: cfg.Allotment.LotSize}
	s.Allotment = &allotment.Service{
		DB:       db,
		Policy:   policy,
		Rand:     allotment.NewRandomSource(cfg.Allotment.Seed),
		Holdings: s.Portfolio,
		Notifier: &notifsvc.Dispatcher{Queue: s.Queue},
	}
	s.Trading = &tradesvc.Service{DB: db, FeeRate: cfg.FeeRate}
	s.Transactions = &txsvc.Service{DB: db}
	s.Notifications = &notifsvc.Service{DB: db}

	s.Trigger = &scheduler.Trigger{Rounds: s.Rounds, Settler: s.Allotment}
	s.Scheduler = &scheduler.Scheduler{Trigger: s.Trigger, Spec: cfg.Allotment.Cron}

	s.Health = &healthsvc.Collector{Rdb: s.Rdb, DB: &database.Pinger{DB: db}}
	if s.Broker != nil {
		s.Health.Probes = append(s.Health.Probes, s.Broker)
	}
	if rq, ok := s.Queue.(*notifsvc.RedisQueue); ok {
		s.Health.Queue = &healthsvc.QueueKeys{Pending: rq.Key, Dead: rq.DeadKey}
	}
	return s, nil
}

// Ping verifies the database and, when configured, Redis.
func (s *Services) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if s.Rdb != nil {
		return s.Rdb.Ping(ctx).Err()
	}
	return nil
}

// Close releases the broker connection, Redis and the database pool.
func (s *Services) Close() {
	if s.Broker != nil {
		if err := s.Broker.Close(); err != nil {
			log.Warn().Err(err).Msg("broker: close")
		}
	}
	if s.Rdb != nil {
		_ = s.Rdb.Close()
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
