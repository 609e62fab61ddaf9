package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YY-OhioU/Passport-Generator/internal/donut"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -folder <dir>\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "Convert ground_truth.jsonl to Donut format.")
		fmt.Fprintln(os.Stderr, "The generated metadata.jsonl is placed in the same folder.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	folder := flag.String("folder", "", "folder containing ground_truth.jsonl (required)")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *folder == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.New(*level, "console")
	defer log.Sync()

	n, err := donut.NewConverter().ConvertFile(*folder)
	if err != nil {
		log.WithError(err).Errorw("❌ Conversion failed", "folder", *folder)
		os.Exit(1)
	}

	log.Infow("✅ Donut metadata written",
		"lines", n,
		"output", filepath.Join(*folder, donut.MetadataFile),
	)
}
