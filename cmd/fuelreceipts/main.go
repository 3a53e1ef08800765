package main

import (
	_ "github.com/joho/godotenv/autoload"

	"fuel-receipts/internal/cli"
)

func main() {
	cli.Execute()
}
