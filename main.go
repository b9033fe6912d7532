package main

import (
	"log"

	"github.com/ben-bakker/searchai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
