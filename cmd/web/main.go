package main

import (
	"log"

	"github.com/joho/godotenv"

	"playerprogress/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment")
	}
	if err := server.Run(); err != nil {
		log.Fatal(err.Error())
	}
}
