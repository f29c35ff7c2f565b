// Command wingloft generates an STL model of a tapered, swept wing panel
// from a Selig formatted airfoil file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/wing"
	"github.com/soypat/wing/helpers/matter"
	"github.com/soypat/wing/render"
)

type config struct {
	params   wing.Parameters
	outfile  string
	airfoil  string
	name     string
	ascii    bool
	png      string
	plot     string
	verbose  bool
	material string // compensates print shrinkage when non-empty.
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("wingloft: ")
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		if err != flag.ErrHelp {
			log.Print(err)
		}
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (config, error) {
	var cfg config
	float := func(p *float64, short, long string, value float64, usage string) {
		fs.Float64Var(p, short, value, usage)
		fs.Float64Var(p, long, value, usage+" (same as -"+short+")")
	}
	str := func(p *string, short, long, usage string) {
		fs.StringVar(p, short, "", usage)
		fs.StringVar(p, long, "", usage+" (same as -"+short+")")
	}
	float(&cfg.params.SemiSpan, "w", "semi-wingspan", 0, "width of each wing")
	float(&cfg.params.Sweep, "s", "sweep", 0, "distance to sweep the wing back")
	float(&cfg.params.RootChord, "r", "root-chord", 0, "root chord length")
	float(&cfg.params.TipChord, "t", "tip-chord", 0, "tip chord length")
	str(&cfg.outfile, "o", "outfile", "where to write the stl-formatted model")
	fs.StringVar(&cfg.name, "name", "", "solid name stored in the STL (default airfoil file name)")
	fs.BoolVar(&cfg.ascii, "ascii", false, "write ASCII STL instead of binary")
	fs.StringVar(&cfg.png, "png", "", "also render a PNG preview of the model to this file")
	fs.StringVar(&cfg.plot, "plot", "", "also plot the airfoil profile to this file (.png, .svg, .pdf)")
	fs.BoolVar(&cfg.verbose, "v", false, "log mesh statistics")
	fs.StringVar(&cfg.material, "material", "", "scale the model to compensate filament shrinkage (pla, petg, abs)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: wingloft -w SEMISPAN [-s SWEEP] -r ROOT -t TIP -o OUT.stl [flags] AIRFOIL.dat\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cfg, fmt.Errorf("expected 1 airfoil file argument, got %d", fs.NArg())
	}
	cfg.airfoil = fs.Arg(0)
	if cfg.outfile == "" {
		return cfg, fmt.Errorf("missing output file (-o)")
	}
	if err := cfg.params.Validate(); err != nil {
		return cfg, err
	}
	if cfg.material != "" {
		if _, err := matter.Lookup(cfg.material); err != nil {
			return cfg, err
		}
	}
	if cfg.name == "" {
		base := filepath.Base(cfg.airfoil)
		cfg.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return cfg, nil
}

func run(cfg config) error {
	profile, err := wing.ParseFile(cfg.airfoil)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.airfoil, err)
	}
	params := cfg.params
	if cfg.material != "" {
		m, err := matter.Lookup(cfg.material)
		if err != nil {
			return err
		}
		params = m.Scale(params)
		if cfg.verbose {
			log.Printf("scaled for %s shrinkage: %+v", m, params)
		}
	}
	mesh, err := wing.Build(profile, params)
	if err != nil {
		return err
	}
	if cfg.verbose {
		bb := mesh.Bounds()
		log.Printf("%d profile points, %d triangles (%d side, %d root cap, %d tip cap)",
			len(profile), len(mesh.Triangles), mesh.Side, mesh.RootCap, mesh.TipCap)
		log.Printf("bounds %v to %v", bb.Min, bb.Max)
	}
	format := render.Binary
	if cfg.ascii {
		format = render.ASCII
	}
	if err = render.CreateSTL(cfg.outfile, cfg.name, mesh, format); err != nil {
		return err
	}
	if cfg.verbose {
		log.Printf("wrote %s STL to %s", format, cfg.outfile)
	}
	if cfg.plot != "" {
		if err = render.PlotProfile(cfg.plot, cfg.name, profile); err != nil {
			return fmt.Errorf("plotting profile: %w", err)
		}
	}
	if cfg.png != "" {
		if err = render.CreatePNG(cfg.outfile, cfg.png, render.DefaultView); err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
	}
	return nil
}
