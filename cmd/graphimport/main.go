package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"accessnav/pkg/roadgraph"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "network.json", "Output road network snapshot path")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: graphimport --input <file.osm.pbf> [--output network.json]")
		os.Exit(1)
	}

	start := time.Now()

	log.Printf("Opening OSM file %s...", *input)
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Extracting wheelchair-passable ways...")
	g, err := roadgraph.LoadPBF(context.Background(), f)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Network: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	log.Printf("Writing snapshot to %s...", *output)
	if err := g.SaveSnapshot(*output); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	info, _ := os.Stat(*output)
	log.Printf("Done in %s. Output: %s (%.1f KB)",
		time.Since(start).Round(time.Millisecond), *output, float64(info.Size())/1024)
}
