package main

import (
	"log"

	"github.com/marksync/marks/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ marksd failed to start: %v", err)
	}
}
