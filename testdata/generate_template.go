package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/YY-OhioU/Passport-Generator/internal/testsupport"
)

// Genera una plantilla de pasaporte de prueba en <assets>/template:
//
//	go run testdata/generate_template.go -assets assets -name MO_passport_text_removed
func main() {
	assets := flag.String("assets", "assets", "assets directory")
	name := flag.String("name", "MO_passport_text_removed", "template name")
	flag.Parse()

	if err := testsupport.WriteTemplate(*assets, *name, image.Pt(800, 520), testsupport.PassportLabels); err != nil {
		fmt.Fprintf(os.Stderr, "Error generando plantilla: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Plantilla de prueba generada en %s/template/%s.{png,json}\n", *assets, *name)
}
