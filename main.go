package main

import (
	"log"

	"github.com/hvtool/acpitables/flag"
)

func main() {
	if err := flag.Parse(); err != nil {
		log.Fatal(err)
	}
}
