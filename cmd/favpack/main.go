package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/Mavwarf/favpack/internal/config"
	"github.com/Mavwarf/favpack/internal/history"
	"github.com/Mavwarf/favpack/internal/paths"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// stdoutIsTerminal reports whether stdout is a terminal; tests replace it.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// app carries the state shared by all commands.
type app struct {
	cfg     config.Config
	out     string // --out value; "" = conventional name in the current directory
	stdout  io.Writer
	dataDir string
}

func main() {
	args := os.Args[1:]
	configPath := ""
	outPath := ""

	// Parse global flags
	filtered := args[:0]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			} else {
				fmt.Fprintf(os.Stderr, "Error: --config requires a file path\n")
				os.Exit(1)
			}
		case "--out", "-o":
			if i+1 < len(args) {
				outPath = args[i+1]
				i++
			} else {
				fmt.Fprintf(os.Stderr, "Error: --out requires a path (or - for stdout)\n")
				os.Exit(1)
			}
		default:
			filtered = append(filtered, args[i])
		}
	}

	if len(filtered) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch filtered[0] {
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-V", "--version":
		printVersion()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a := &app{cfg: cfg, out: outPath, stdout: os.Stdout, dataDir: paths.DataDir()}

	if err := a.run(filtered[0], filtered[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "generate", "gen":
		return a.generateCmd(args)
	case "text":
		return a.textCmd(args)
	case "ico":
		return a.icoCmd(args)
	case "png":
		return a.pngCmd(args)
	case "inspect":
		return a.inspectCmd(args)
	case "serve":
		return a.serveCmd(args)
	case "history":
		return a.historyCmd(args)
	default:
		return fmt.Errorf("unknown command %q (run 'favpack help' for usage)", cmd)
	}
}

// openStore opens the activity log when logging is enabled. Failures are
// reported and logging is skipped.
func (a *app) openStore() history.Store {
	if !a.cfg.Log {
		return nil
	}
	s, err := history.Open(a.cfg.Storage, a.dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return nil
	}
	return s
}

func printVersion() {
	fmt.Printf("favpack %s (%s) %s/%s\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("favpack %s - Generate favicon packs from an image or text\n", version)
	fmt.Println(`
Usage:
  favpack [options] <command> [args]

Options:
  --config, -c <path>    Path to favpack-config.json
  --out, -o <path>       Output file or directory ("-" for stdout)

Commands:
  generate <image>       ZIP with favicon.ico, PNG icons and site.webmanifest
      --name <name>          manifest name
      --short-name <name>    manifest short_name (also names the archive)
      --theme-color <c>      manifest theme_color
      --background-color <c> manifest background_color
  text <string>          Same ZIP, rendered from text
      --color <c>            font colour (default white)
      --bg <c>               background colour (default black)
      --font-size <n>        font size in logical pixels (default 64)
      --shape <s>            square | circle | rounded
      --bold, --italic       font style
      --name, --short-name   as for generate
  ico <image>            Multi-size favicon.ico
      --sizes <list>         comma-separated sizes (default 16,32,48)
  png <image> --size <n> Single square PNG
      --quality <q>          0-1, accepted for compatibility (PNG is lossless)
  inspect <file.ico>     Print the icon directory
  serve [--port <n>]     HTTP API on 127.0.0.1 (default 8787)
  history [days]         Show generations of the last days (default 7, 0 = all)
  history clean <days>   Remove records older than days
  history clear          Delete the activity log
  version, -V            Show version and build date
  help, -h, --help       Show this help message

Supported images: PNG, JPEG, GIF, WebP, BMP, SVG (max 5 MiB by default).

Config resolution:
  1. --config <path>                       (explicit)
  2. favpack-config.json next to binary     (portable)
  3. ~/.config/favpack/favpack-config.json  (user default)

Examples:
  favpack generate logo.png --short-name blog
  favpack text F --bg "#209CEE" --shape circle --bold
  favpack ico logo.svg --sizes 16,32,48,256 -o static/
  favpack png logo.png --size 180 -o - > apple-touch-icon.png`)
}
