// Command venn evaluates set-algebra formulas over a board of circular
// regions, renders the result as SVG, or serves the board over HTTP.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-venn/geometry"
	"github.com/pflow-xyz/go-venn/history"
	"github.com/pflow-xyz/go-venn/render"
	"github.com/pflow-xyz/go-venn/server"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "eval":
		if err := evalCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := renderCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serveCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("venn version " + version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`venn - set operations over circular regions

Usage:
  venn <command> [options]

Commands:
  eval     Evaluate a formula and print the result size
  render   Evaluate a formula and write an SVG image
  serve    Serve the board over HTTP
  version  Print version
  help     Show this help

Formula syntax:
  A U B    union
  A & B    intersection
  A ^ B    symmetric difference
  A - B    difference
  A.       complement (postfix)
  ( )      grouping

Examples:
  venn eval -f "A U B"
  venn render -f "(A U B)." -o result.svg
  venn serve -addr :8080 -db history.db`)
}

func evalCmd(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	formula := fs.String("f", server.DefaultFormula, "formula to evaluate")
	fs.Parse(args)

	board := geometry.DefaultBoard()
	result, err := board.Evaluate(*formula)
	if err != nil {
		return err
	}

	fmt.Printf("formula:  %s\n", *formula)
	fmt.Printf("universe: %d points\n", board.Grid().Size())
	fmt.Printf("result:   %d points\n", result.Count())
	return nil
}

func renderCmd(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	formula := fs.String("f", server.DefaultFormula, "formula to evaluate")
	out := fs.String("o", "venn.svg", "output file")
	width := fs.Float64("w", 800, "image width in pixels")
	height := fs.Float64("h", 800, "image height in pixels")
	fs.Parse(args)

	board := geometry.DefaultBoard()
	result, err := board.Evaluate(*formula)
	if err != nil {
		return err
	}

	r := render.NewRenderer(*width, *height)
	if err := r.SaveSVG(*out, board, *formula, result); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("wrote %s (%d points)\n", *out, result.Count())
	return nil
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	dbPath := fs.String("db", "", "SQLite file for formula history (empty: in-memory)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	var store history.Store
	if *dbPath != "" {
		var err error
		store, err = history.NewSQLiteStore(*dbPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
	} else {
		store = history.NewMemoryStore()
	}
	defer store.Close()

	s := server.NewServer(geometry.DefaultBoard())
	s.SetStore(store)
	s.SetLogger(log)

	log.Info().Str("addr", *addr).Msg("serving board")
	return http.ListenAndServe(*addr, s)
}
