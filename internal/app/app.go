// Package app собирает зависимости пайплайна для команд CLI:
// подключения, репозитории и юзкейсы.
package app

import (
	"context"
	"time"

	config "github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/infrastructure/embed"
	"github.com/DRSN-tech/product-qc/internal/infrastructure/kafka"
	minioRepo "github.com/DRSN-tech/product-qc/internal/repository/minio"
	"github.com/DRSN-tech/product-qc/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/product-qc/internal/repository/qdrant"
	redisRepo "github.com/DRSN-tech/product-qc/internal/repository/redis"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/clients"
	"github.com/DRSN-tech/product-qc/pkg/closer"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/DRSN-tech/product-qc/pkg/postgres"
	"github.com/jimlawless/whereami"
)

// App держит разделяемые зависимости. Команды инициализируют только те
// подключения, которые им нужны.
type App struct {
	Cfg    *config.Config
	Log    logger.Logger
	Closer *closer.Closer

	DB           *postgres.PgDatabase
	qdrantClient *clients.QdrantClient
	redisClient  *clients.RedisClient
	objectRepo   *minioRepo.ObjectRepo
	producer     *kafka.Producer
	mlService    *embed.OpenAIService
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &App{
		Cfg:    cfg,
		Log:    log,
		Closer: closer.New(),
	}, nil
}

// ConnectDB подключается к PostgreSQL и регистрирует закрытие пула.
func (a *App) ConnectDB() error {
	db, err := postgres.Connect(a.Cfg.Db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.DB = db
	a.Closer.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	return nil
}

// InitMinio создаёт клиент объектного хранилища и бакет, если его нет.
func (a *App) InitMinio(ctx context.Context) error {
	client, err := clients.NewMinIOClient(a.Cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := clients.EnsureBucket(bucketCtx, client, a.Cfg.Minio.BucketName); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.objectRepo = minioRepo.NewObjectRepo(client, a.Cfg.Minio)

	return nil
}

// InitQdrant создаёт клиент векторного индекса.
func (a *App) InitQdrant() error {
	client, err := clients.NewQdrantClient(a.Cfg.Qdrant)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.qdrantClient = client
	a.Closer.Add(func(ctx context.Context) error {
		return client.Client.Close()
	})

	return nil
}

// InitRedis подключает кэш карточек. Недоступный Redis не фатален:
// кэширование деградирует до прямых чтений из базы.
func (a *App) InitRedis(ctx context.Context) {
	client := clients.NewRedisClient(a.Cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		a.Log.Warnf("redis unavailable, summary cache disabled: %v", err)
	}

	a.redisClient = client
	a.Closer.Add(func(ctx context.Context) error {
		return client.Client.Close()
	})
}

// InitKafka поднимает продюсер событий, если шина включена конфигом.
func (a *App) InitKafka() error {
	if !a.Cfg.Kafka.Enabled {
		return nil
	}

	producer, err := kafka.NewProducer(a.Log, a.Cfg.Kafka)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.producer = producer
	a.Closer.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	return nil
}

// MLService лениво создаёт клиент вендорского ML-эндпоинта.
func (a *App) MLService() *embed.OpenAIService {
	if a.mlService == nil {
		a.mlService = embed.NewOpenAIService(a.Cfg.Ml)
	}

	return a.mlService
}

// events возвращает продюсер либо nil, когда шина выключена.
func (a *App) events() usecase.EventProducer {
	if a.producer == nil {
		return nil
	}

	return a.producer
}

// Shutdown закрывает все зарегистрированные ресурсы.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.Closer.Close(ctx); err != nil {
		a.Log.Warnf("shutdown: %v", err)
	}
}

func (a *App) LoaderUC() *usecase.LoaderUC {
	return usecase.NewLoaderUC(
		pgdb.NewProductRepo(a.DB.Pool),
		a.DB.Pool,
		a.events(),
		a.Cfg.Pipeline,
		a.Log,
	)
}

func (a *App) ImageLinkUC() *usecase.ImageLinkUC {
	return usecase.NewImageLinkUC(
		pgdb.NewProductRepo(a.DB.Pool),
		pgdb.NewImageRepo(a.DB.Pool),
		a.objectRepo,
		a.DB.Pool,
		a.events(),
		a.Cfg.Pipeline,
		a.Log,
	)
}

func (a *App) EmbedderUC() *usecase.EmbedderUC {
	return usecase.NewEmbedderUC(
		pgdb.NewEmbeddingRepo(a.DB.Pool),
		pgdb.NewImageRepo(a.DB.Pool),
		qdrantRepo.NewPointRepo(a.qdrantClient.Client, a.Cfg.Qdrant),
		a.MLService(),
		a.DB.Pool,
		a.events(),
		a.Cfg.Ml,
		a.Cfg.Qdrant,
		a.Cfg.Pipeline,
		a.Log,
	)
}

func (a *App) CheckerUC() *usecase.CheckerUC {
	return usecase.NewCheckerUC(
		pgdb.NewEmbeddingRepo(a.DB.Pool),
		pgdb.NewProductRepo(a.DB.Pool),
		qdrantRepo.NewPointRepo(a.qdrantClient.Client, a.Cfg.Qdrant),
		redisRepo.NewCacheRepo(a.redisClient, a.Cfg.Redis, a.Log),
		a.Cfg.Pipeline.Threshold,
		a.Log,
	)
}

func (a *App) ValidatorUC() *usecase.ValidatorUC {
	return usecase.NewValidatorUC(
		pgdb.NewProductRepo(a.DB.Pool),
		a.events(),
		a.Cfg.Pipeline,
		a.Log,
	)
}

func (a *App) SmokeUC() *usecase.SmokeUC {
	return usecase.NewSmokeUC(pgdb.NewProductRepo(a.DB.Pool), a.MLService(), a.Cfg.Ml, a.Log)
}
