package main

import (
	"os"

	"fantasy-ai/backend/internal/app"
)

// @title           Fantasy AI API
// @version         1.0
// @description     Chat backend for AI characters: sessions, usage limits, recent chats and voice transcription.
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	os.Exit(app.Run())
}
