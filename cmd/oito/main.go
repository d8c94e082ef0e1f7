package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/zurustar/oito/pkg/app"
)

//go:embed roms
var embeddedROMs embed.FS

func main() {
	application := app.New(embeddedROMs)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
