package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/gem-maze/api"
	gameapi "github.com/beka-birhanu/gem-maze/api/game"
	api_i "github.com/beka-birhanu/gem-maze/api/i"
	"github.com/beka-birhanu/gem-maze/api/identity"
	"github.com/beka-birhanu/gem-maze/config"
	"github.com/beka-birhanu/gem-maze/game"
	pb "github.com/beka-birhanu/gem-maze/game/pb_encoder"
	logger "github.com/beka-birhanu/gem-maze/infrastruture/log"
	"github.com/beka-birhanu/gem-maze/infrastruture/mazecache"
	"github.com/beka-birhanu/gem-maze/infrastruture/repo"
	"github.com/beka-birhanu/gem-maze/infrastruture/token"
	"github.com/beka-birhanu/gem-maze/service"
	"github.com/beka-birhanu/gem-maze/service/i"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	encoder            game.Encoder
	mazeCache          i.MazeCache
	mazeService        *service.MazeService
	gameSessionManager *service.GameSessionManager
	userRepo           *repo.UserRepo
	jwtTokenizer       i.Tokenizer
	authService        i.Authenticator
	authController     api_i.Controller
	mazeController     api_i.Controller
	sessionController  api_i.Controller
	router             *api.Router
	appLogger          *logger.Logger
)

func newLogger(name, color string) *logger.Logger {
	l, err := logger.New(name, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", name, err))
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initUserRepo(ctx context.Context, client *mongo.Client) {
	userRepo = repo.NewUserRepo(client, config.Envs.DBName, "users")
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating user indexes: %v", err))
		os.Exit(1)
	}
	appLogger.Info("User repository initialized")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initMazeService() {
	encoder = &pb.Protobuf{}
	mazeCache = mazecache.NewRedisMazeCache(redisClient, config.Envs.MazeCacheTTL)
	mazeService = service.NewMazeService(&service.MazeServiceConfig{
		Cache:   mazeCache,
		Encoder: encoder,
		Logger:  newLogger("MAZE", logger.ColorBlue),
	})
	appLogger.Info("Maze service initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		MazeFactory: mazeService.LevelFactory(),
		Logger:      newLogger("SESSION-MANAGER", logger.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	authService = service.NewAuth(userRepo, jwtTokenizer)
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	var err error
	authController = identity.NewIdentityServer(authService)

	mazeController, err = gameapi.NewMazeController(mazeService, encoder)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze controller: %v", err))
		os.Exit(1)
	}

	sessionController, err = gameapi.NewSessionController(gameSessionManager, encoder)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Mode:                    config.Envs.GinMode,
		Controllers:             []api_i.Controller{authController, mazeController, sessionController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger, _ = logger.New("APP", logger.ColorGreen, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	initRedis(ctx)
	defer redisClient.Close()

	initUserRepo(ctx, mongoClient)
	initMazeService()
	initSessionManager()
	defer gameSessionManager.StopAll()

	initJWTTokenizer()
	initAuthService()
	initControllers()
	initRouter(jwtTokenizer)

	serveCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info(fmt.Sprintf("Serving on %s:%d", config.Envs.HostIP, config.Envs.RESTPort))
	if err := router.Run(serveCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		return
	}
	appLogger.Info("Server stopped")
}
