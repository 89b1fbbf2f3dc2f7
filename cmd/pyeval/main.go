// Command pyeval evaluates a single Python-style expression and prints the
// result as one line of type-tagged JSON: {"ok": {"int": 1}} on success,
// {"err": "..."} on any failure. It also ships an interactive REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/panicbit/aprs/pyeval"
)

const (
	appName     = "pyeval"
	historyFile = ".pyeval_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("pyeval %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", pyeval.Version)

const helpText = `
REPL commands:
  :quit    Exit the REPL
  :json    Toggle tagged-JSON envelope output
  :help    Show this help
`

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "eval":
		os.Exit(cmdEval(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(pyeval.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %[1]s <command> [flags]

Commands:
  eval <expr>   Evaluate one expression, print one JSON envelope on stdout
  repl          Interactive read-eval-print loop
  version       Print the version

Flags (eval and repl):
      --config string   YAML config file (max_depth, sort_sets)
      --max-depth int   Bound encoder nesting depth (0 = unbounded)
      --sort-sets       Emit set payloads sorted by encoded form
      --debug           Verbose evaluation logging on stderr
`, appName)
}

// commonFlags registers the flags shared by eval and repl on fs and returns
// a function that resolves the effective config (file values overridden by
// explicitly set flags).
func commonFlags(fs *pflag.FlagSet) func() (pyeval.Config, *zap.Logger, error) {
	configPath := fs.String("config", "", "YAML config file")
	maxDepth := fs.Int("max-depth", 0, "bound encoder nesting depth (0 = unbounded)")
	sortSets := fs.Bool("sort-sets", false, "emit set payloads sorted by encoded form")
	debug := fs.Bool("debug", false, "verbose evaluation logging on stderr")

	return func() (pyeval.Config, *zap.Logger, error) {
		cfg := pyeval.DefaultConfig()
		if *configPath != "" {
			var err error
			cfg, err = pyeval.LoadConfig(*configPath)
			if err != nil {
				return cfg, nil, err
			}
		}
		if fs.Changed("max-depth") {
			cfg.MaxDepth = *maxDepth
		}
		if fs.Changed("sort-sets") {
			cfg.SortSets = *sortSets
		}

		log := zap.NewNop()
		if *debug {
			var err error
			log, err = zap.NewDevelopment()
			if err != nil {
				return cfg, nil, err
			}
		}
		return cfg, log, nil
	}
}

func cmdEval(args []string) int {
	fs := pflag.NewFlagSet("eval", pflag.ContinueOnError)
	resolve := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s eval [flags] <expression>\n", appName)
		return 2
	}

	cfg, log, err := resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}
	defer log.Sync() //nolint:errcheck

	ip := pyeval.NewInterpWithLogger(log)
	fmt.Println(string(ip.RunSource(fs.Arg(0), cfg.Options())))
	// The envelope is the contract: failures are reported in-band.
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) int {
	fs := pflag.NewFlagSet("repl", pflag.ContinueOnError)
	resolve := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, log, err := resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}
	defer log.Sync() //nolint:errcheck

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := pyeval.NewInterpWithLogger(log)
	jsonMode := false

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":json":
				jsonMode = !jsonMode
				fmt.Printf("envelope output %s\n", onOff(jsonMode))
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Println("unknown command. Type :help for help.")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		if jsonMode {
			fmt.Println(string(ip.RunSource(code, cfg.Options())))
		} else {
			v, err := ip.EvalSource(code)
			if err != nil {
				fmt.Fprintln(os.Stderr, red(pyeval.WrapErrorWithSource(err, code).Error()))
				ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
				continue
			}
			fmt.Println(blue(pyeval.Repr(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// readByParseProbe reads lines until the input parses as a complete
// expression or fails with a definite error; unterminated containers keep
// the continuation prompt going.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() == 0 && strings.TrimSpace(line) == "" {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := pyeval.ParseSExprInteractive(src)
		if perr == nil {
			return src, true
		}
		if pyeval.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
