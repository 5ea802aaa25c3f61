// Command hplc compiles one source file to AMD64 assembly text
// (spec.md §6). Thin by design: flag parsing, file I/O and exit-code
// bookkeeping live here; every real decision is internal/compiler's.
// Grounded on original_source/src/main.cpp's argv-to-options-to-compile
// shape, re-expressed with db47h-ngaro/cmd/retro's thin-main split.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gmofishsauce/hplc/internal/compiler"
	"github.com/gmofishsauce/hplc/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hplc", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML configuration file (spec.md §6)")
	outPath := fs.String("o", "", "output file for the assembly listing (default: stdout)")
	target := fs.String("target", "", "override config target: amd64-windows or amd64-unix")
	stopAfter := fs.String("stop-after", "", "override config stop_after: lex, parse, check, ir, codegen, link")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hplc [flags] <source.hp>")
		fs.PrintDefaults()
		return 2
	}
	srcPath := fs.Arg(0)

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	if *target != "" {
		cfg.Target = config.Target(*target)
	}
	if *stopAfter != "" {
		cfg.StopAfter = config.Phase(*stopAfter)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return 2
	}

	ctx := compiler.NewContext(cfg)
	asm, ok, err := ctx.CompileFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hplc: internal error: %v\n", err)
		return 1
	}
	if msgs := ctx.Diagnostics(); msgs != "" {
		fmt.Fprint(os.Stderr, msgs)
	}
	ctx.Teardown(os.Stderr)
	if !ok {
		return 1
	}

	if *outPath == "" {
		fmt.Print(asm)
		return 0
	}
	if err := os.WriteFile(*outPath, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "hplc: writing %s: %v\n", *outPath, err)
		return 1
	}
	return 0
}
