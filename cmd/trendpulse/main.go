package main

import (
	"trendpulse/cmd/handlers"
	"trendpulse/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
