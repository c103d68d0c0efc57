package main

import (
	"log"

	"github.com/ideabosque/openai-funct-base/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("funct-gateway failed: %v", err)
	}
}
