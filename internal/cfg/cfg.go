package cfg

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Pipeline *PipelineCfg
	Db       *PGDBCfg
	Minio    *MinIOCfg
	Qdrant   *QdrantCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Ml       *MLCfg
	Http     *HTTPConfig
}

// PipelineCfg — параметры самого QC-пайплайна.
type PipelineCfg struct {
	ProjectID      string  // логический идентификатор проекта, попадает в события
	Dataset        string  // схема PostgreSQL, в которой живут таблицы пайплайна
	ImagesRoot     string  // корень дерева локальных изображений (подкаталог на продукт)
	Threshold      float64 // порог кросс-модальной косинусной близости
	TopK           int     // количество соседей при векторном поиске
	QueryProductID string  // продукт по умолчанию для команды search
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Schema   string // search_path, совпадает с Pipeline.Dataset
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type QdrantCfg struct {
	Host       string
	Port       int
	ApiKey     string
	UseTLS     bool
	VectorSize uint64 // размер вектора по умолчанию, если коллекция создаётся до первой загрузки
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	DialTimeout time.Duration
	Timeout     time.Duration
	SummaryTTL  time.Duration
}

type KafkaCfg struct {
	Enabled           bool
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// MLCfg описывает вендорский ML-эндпоинт: модели вызываются по имени,
// содержимое (текст или URI объекта) передаётся как вход.
type MLCfg struct {
	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string
	BoolModel  string
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	pipeline, err := loadPipelineCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db := loadPGDBCfg(pipeline.Dataset)

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Pipeline: pipeline,
		Db:       db,
		Minio:    loadMinIOCfg(),
		Qdrant:   qdrant,
		Redis:    redis,
		Kafka:    kafka,
		Ml:       loadMLCfg(),
		Http:     http,
	}, nil
}

func loadPipelineCfg(log logger.Logger) (*PipelineCfg, error) {
	const (
		defaultProjectID = "product-qc"
		defaultDataset   = "product_qc"
		defaultRoot      = "data/images"
		defaultThreshold = 0.3
		defaultTopK      = 5
		defaultProductID = "example_id"
	)

	thresholdStr := getEnvOrDefault("CONSISTENCY_THRESHOLD", strconv.FormatFloat(defaultThreshold, 'f', -1, 64))
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		log.Errorf(err, "invalid CONSISTENCY_THRESHOLD")
		return nil, err
	}

	topK, err := parseIntEnv("SEARCH_TOP_K", defaultTopK)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_TOP_K")
		return nil, err
	}

	return &PipelineCfg{
		ProjectID:      getEnvOrDefault("PRODUCT_QC_PROJECT", defaultProjectID),
		Dataset:        getEnvOrDefault("PRODUCT_QC_DATASET", defaultDataset),
		ImagesRoot:     getEnvOrDefault("IMAGES_ROOT", defaultRoot),
		Threshold:      threshold,
		TopK:           topK,
		QueryProductID: getEnvOrDefault("QUERY_PRODUCT_ID", defaultProductID),
	}, nil
}

func loadPGDBCfg(schema string) *PGDBCfg {
	const (
		defaultHost     = "localhost"
		defaultPort     = "5432"
		defaultUser     = "postgres"
		defaultPassword = "postgres"
		defaultDBName   = "product_qc"
		defaultSSLMode  = "disable"
	)

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     getEnvOrDefault("POSTGRES_USER", defaultUser),
		Password: getEnvOrDefault("POSTGRES_PASSWORD", defaultPassword),
		DBName:   getEnvOrDefault("POSTGRES_DB", defaultDBName),
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
		Schema:   schema,
	}
}

func loadMinIOCfg() *MinIOCfg {
	const (
		defaultEndpoint = "localhost:9000"
		defaultBucket   = "product-images"
		defaultUser     = "minioadmin"
		defaultPassword = "minioadmin"
	)

	useSSL, _ := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", "false"))

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnvOrDefault("MINIO_ROOT_USER", defaultUser),
		MinioRootPassword: getEnvOrDefault("MINIO_ROOT_PASSWORD", defaultPassword),
		MinioUseSSL:       useSSL,
	}
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultHost       = "localhost"
		defaultGRPCPort   = "6334"
		defaultVectorSize = "1536"
	)

	port, err := strconv.Atoi(getEnvOrDefault("QDRANT_GRPC_PORT", defaultGRPCPort))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", "false"))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:       getEnvOrDefault("QDRANT_HOST", defaultHost),
		Port:       port,
		ApiKey:     getEnv("QDRANT__SERVICE__API_KEY"),
		UseTLS:     useTLS,
		VectorSize: vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr        = "localhost:6379"
		defaultDB          = 0
		defaultDialTimeout = 5 * time.Second
		defaultTimeout     = 3 * time.Second
		defaultSummaryTTL  = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	timeout, err := parseDurationEnv("REDIS_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_TIMEOUT")
		return nil, err
	}

	summaryTTL, err := parseDurationEnv("SUMMARY_TTL", defaultSummaryTTL)
	if err != nil {
		log.Errorf(err, "invalid SUMMARY_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		SummaryTTL:  summaryTTL,
	}, nil
}

func loadKafkaCfg(log logger.Logger) (*KafkaCfg, error) {
	const (
		defaultBrokers           = "localhost:9092"
		defaultTopic             = "product-qc-events"
		defaultNetworkMode       = "tcp"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
	)

	enabled, err := strconv.ParseBool(getEnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		log.Errorf(err, "invalid KAFKA_ENABLED")
		return nil, err
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Enabled:           enabled,
		Brokers:           strings.Split(getEnvOrDefault("KAFKA_BROKERS", defaultBrokers), ","),
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

func loadMLCfg() *MLCfg {
	const (
		defaultTextModel  = "text-embedding-3-small"
		defaultImageModel = "multimodal-embedding-001"
		defaultBoolModel  = "gpt-4o-mini"
	)

	return &MLCfg{
		BaseURL:    getEnv("ML_BASE_URL"),
		APIKey:     getEnv("ML_API_KEY"),
		TextModel:  getEnvOrDefault("TEXT_EMBED_MODEL", defaultTextModel),
		ImageModel: getEnvOrDefault("IMAGE_EMBED_MODEL", defaultImageModel),
		BoolModel:  getEnvOrDefault("GENERATIVE_BOOL_MODEL", defaultBoolModel),
	}
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
