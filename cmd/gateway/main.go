package main

import (
	"log"

	"github.com/futig/rag-gateway/internal/builder"
)

func main() {
	app, err := builder.Build()
	if err != nil {
		log.Fatal("Failed to build gateway:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Gateway error:", err)
	}
}
