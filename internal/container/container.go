package container

import (
	"database/sql"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/config"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/storage"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
)

// app-level container shared by main and the router wiring.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	sqlDB       *sql.DB
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	mailSender mailer.Sender
	photoStore storage.PhotoStore
	esClient   *elasticsearch.Client
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetDB(db *sql.DB)             { sqlDB = db }
func GetDB() *sql.DB               { return sqlDB }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetMailer(s mailer.Sender)          { mailSender = s }
func GetMailer() mailer.Sender           { return mailSender }
func SetPhotoStore(s storage.PhotoStore) { photoStore = s }
func GetPhotoStore() storage.PhotoStore  { return photoStore }
func SetES(c *elasticsearch.Client)      { esClient = c }
func GetES() *elasticsearch.Client       { return esClient }
