package main

import (
	"log"

	"github.com/futig/rag-gateway/internal/builder"
)

func main() {
	app, err := builder.BuildIndexer()
	if err != nil {
		log.Fatal("Failed to build indexer:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Indexer error:", err)
	}
}
