// Command supportgen generates support layers for a sliced object and prints
// a per-layer summary.
//
// Usage:
//
//	supportgen [-config support.json] [-dump dir] [-v] object.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/layerforge/support"
	"github.com/layerforge/support/geom"
)

func main() {
	var (
		configPath = flag.String("config", "", "support configuration (JSON)")
		dumpDir    = flag.String("dump", "", "write per-layer debug plots into this directory")
		output     = flag.String("output", "", "write the layer summary as JSON to this file")
		workers    = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		verbose    = flag.Bool("v", false, "log every stage")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] object.json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	support.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(flag.Arg(0), *configPath, *dumpDir, *output, *workers); err != nil {
		log.Fatalf("supportgen: %v", err)
	}
}

func run(objectPath, configPath, dumpDir, output string, workers int) error {
	cfg := support.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = support.LoadConfig(configPath); err != nil {
			return err
		}
	}
	obj, err := loadObject(objectPath)
	if err != nil {
		return err
	}

	opts := []support.Option{support.WithWorkers(workers)}
	if dumpDir != "" {
		opts = append(opts, support.WithDebugDump(dumpDir))
	}
	res, err := support.Generate(obj, cfg, opts...)
	if errors.Is(err, support.ErrNoObject) {
		return fmt.Errorf("%s has no layers", objectPath)
	}
	if err != nil {
		return err
	}

	printSummary(os.Stdout, res)
	if output != "" {
		return writeSummary(output, res)
	}
	return nil
}

// layerSummary is the JSON form of one published layer.
type layerSummary struct {
	PrintZ    float64 `json:"print_z"`
	Height    float64 `json:"height"`
	Kinds     string  `json:"kinds"`
	Area      float64 `json:"area_mm2"`
	Islands   int     `json:"islands"`
	Extrusion float64 `json:"extrusion_mm"`
	Interface float64 `json:"interface_mm"`
}

func summarize(l *support.SupportLayer) layerSummary {
	return layerSummary{
		PrintZ:    l.PrintZ,
		Height:    l.Height,
		Kinds:     l.Kinds.String(),
		Area:      l.Polygons.Area() / (geom.Scale * geom.Scale),
		Islands:   len(l.Islands),
		Extrusion: l.Extrusions.Length(),
		Interface: l.Interface.Length(),
	}
}

func printSummary(w io.Writer, res *support.Result) {
	p := message.NewPrinter(language.English)
	var total, volume float64
	for _, l := range res.Layers {
		s := summarize(l)
		p.Fprintf(w, "z=%7.3f h=%.3f %-32s %10.2f mm² %4d islands %10.1f mm\n",
			s.PrintZ, s.Height, s.Kinds, s.Area, s.Islands, s.Extrusion+s.Interface)
		total += s.Extrusion + s.Interface
		volume += l.Extrusions.Volume() + l.Interface.Volume()
	}
	st := res.Stats
	p.Fprintf(w, "run %s: %d layers (%d top contacts, %d bottom contacts, %d raft), %.0f mm of paths, %.1f mm³ in %v\n",
		res.RunID, st.Published, st.TopContacts, st.BottomContacts, st.Raft, total, volume, st.Elapsed)
}

func writeSummary(path string, res *support.Result) error {
	out := make([]layerSummary, len(res.Layers))
	for i, l := range res.Layers {
		out[i] = summarize(l)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
