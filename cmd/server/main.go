package main

import (
	"github.com/topograph/topograph/internal/server"
	"github.com/topograph/topograph/internal/util"
	"github.com/topograph/topograph/pkg/logger"
	"github.com/topograph/topograph/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
