package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-catalog/library/config"
	"github.com/Astemirdum/library-catalog/library/internal/handler"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/library/internal/server"
	"github.com/Astemirdum/library-catalog/library/internal/service"
	"github.com/Astemirdum/library-catalog/library/internal/storage"
	"github.com/Astemirdum/library-catalog/library/migrations"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/postgres"
	"github.com/Astemirdum/library-catalog/pkg/validate"
	"github.com/IBM/sarama"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	covers, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("storage init", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWT)
	svc, err := newService(db, cfg, tokens, covers, log)
	if err != nil {
		log.Fatal("service init", zap.Error(err))
	}

	var group sarama.ConsumerGroup
	if cfg.Kafka.Enabled() {
		group, err = kafka.NewConsumer(cfg.Kafka, kafka.LibraryConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		go func() {
			if err := kafka.Consume(ctx, group, handler.NewConsumer(svc.UpdateOverdue, log), kafka.OverdueSweepTopic); err != nil {
				log.Error("kafka.Consume", zap.Error(err))
			}
		}()
	}

	opts := []handler.Option{
		handler.WithAllowOrigins(cfg.Server.AllowOrigins),
		handler.WithRateLimit(cfg.Server.RateLimit),
	}
	if disk, ok := covers.(*storage.DiskStore); ok {
		opts = append(opts, handler.WithStaticUploads(disk.PublicPath(), disk.Dir()))
	}
	h := handler.New(svc, tokens, log, opts...)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	if group != nil {
		if err := group.Close(); err != nil {
			log.Warn("consumer group close", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Warn("db close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

func newService(db *sqlx.DB, cfg *config.Config, tokens *auth.TokenManager, covers storage.CoverStore, log *zap.Logger) (*service.Service, error) {
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return nil, err
	}
	return service.NewService(repo, tokens, covers, service.Config{
		MaxActiveBorrows:  cfg.Borrowing.MaxActive,
		DailyFine:         cfg.Borrowing.DailyFine,
		DefaultBorrowDays: cfg.Borrowing.DefaultDays,
		BcryptCost:        cfg.Auth.BcryptCost,
		MaxCoverSize:      cfg.Storage.MaxSize,
	}, log), nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "migrate")
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("migrations applied", zap.String("db", cfg.Database.NameDB))
	return nil
}

// SweepOverdue flips overdue borrow records directly, or with publish set
// asks the running services to do it through Kafka.
func SweepOverdue(ctx context.Context, cfg *config.Config, publish bool) error {
	log := logger.NewLogger(cfg.Log, "sweep")
	if publish {
		if !cfg.Kafka.Enabled() {
			return errors.New("KAFKA_ADDRS is not set")
		}
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewProducer")
		}
		defer producer.Close()
		req := kafka.SweepRequest{RequestedBy: "cli", RequestedAt: time.Now().UTC()}
		if err := kafka.Publish(producer, kafka.OverdueSweepTopic, req); err != nil {
			return errors.Wrap(err, "publish sweep request")
		}
		log.Info("sweep request published", zap.String("topic", kafka.OverdueSweepTopic))
		return nil
	}

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()
	// covers are never touched by the sweep
	svc, err := newService(db, cfg, auth.NewTokenManager(cfg.Auth.JWT), nil, log)
	if err != nil {
		return err
	}
	n, err := svc.UpdateOverdue(ctx)
	if err != nil {
		return err
	}
	log.Info("overdue sweep done", zap.Int64("updated", n))
	return nil
}

// CreateUser provisions an account without going through the API, e.g. the first admin.
func CreateUser(ctx context.Context, cfg *config.Config, username, password, email string, role auth.Role) (model.User, error) {
	in := model.UserCreate{Username: username, Password: password, Email: email, Role: role}
	if err := validate.NewCustomValidator().Validate(in); err != nil {
		return model.User{}, err
	}
	log := logger.NewLogger(cfg.Log, "create-user")
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return model.User{}, err
	}
	defer db.Close()
	svc, err := newService(db, cfg, auth.NewTokenManager(cfg.Auth.JWT), nil, log)
	if err != nil {
		return model.User{}, err
	}
	return svc.CreateUser(ctx, in)
}
