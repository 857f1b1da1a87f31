package middleware

import (
	"github.com/topograph/topograph/internal/util"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/topograph/topograph/pkg/ai"
	oai "github.com/topograph/topograph/pkg/ai/ollama"
	gai "github.com/topograph/topograph/pkg/ai/openai"
	"github.com/topograph/topograph/pkg/logger"
	"github.com/topograph/topograph/pkg/store"
)

type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	S3       *s3.Client
	Storage  store.GraphStorage
	AiClient ai.GraphAIClient
}

type AppContext struct {
	echo.Context
	App *App
}

// NewAIClient builds the configured AI backend from the environment.
func NewAIClient() ai.GraphAIClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ChatModel: util.GetEnv("AI_CHAT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ChatModel: util.GetEnv("AI_CHAT_MODEL"),

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	s3 *s3.Client,
	storage store.GraphStorage,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:   db,
				Queue:    queue,
				S3:       s3,
				Storage:  storage,
				AiClient: NewAIClient(),
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
