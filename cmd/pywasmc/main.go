// Command pywasmc is a thin CLI wrapper over the pywasmc library (spec §1
// names the CLI driver itself as a non-goal; this is the minimal surface
// needed to invoke the library from a shell, not a specified UX).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sunholo/pywasmc/internal/compiler"
	"github.com/sunholo/pywasmc/internal/verbosity"
)

var (
	red  = color.New(color.FgRed, color.Bold).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "metadata":
		runMetadata(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(bold("pywasmc") + " - source-to-binary-module compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pywasmc build <file-or-dir> [flags]    compile a file or project to a binary module")
	fmt.Println("  pywasmc metadata <file>                print function signatures as JSON")
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "out.bin", "output path for the compiled binary")
	optimize := fs.Bool("optimize", true, "pass the binary through the external optimizer")
	maxMemory := fs.Uint("max-memory", 2, "memory declaration upper bound, in pages")
	entryPoint := fs.String("entry-point", "", "override the synthesized entry point's callee name")
	verbose := fs.String("verbosity", "normal", "quiet|normal|verbose|debug")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: expected exactly one file or directory argument\n", red("Error"))
		os.Exit(1)
	}
	target := fs.Arg(0)

	opts := compiler.DefaultOptions()
	opts.Optimize = *optimize
	opts.MaxMemory = uint32(*maxMemory)
	opts.EntryPoint = *entryPoint
	opts.Verbosity = *verbose

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	var res *compiler.Result
	if info.IsDir() {
		res, err = compiler.CompileProject(target, opts)
	} else {
		src, readErr := os.ReadFile(target)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), readErr)
			os.Exit(1)
		}
		res, err = compiler.CompileSource(string(src), opts)
	}
	if err != nil {
		verbosity.Errorf("%v", err)
		os.Exit(1)
	}

	for _, w := range res.Warnings {
		verbosity.Warnf("%s", w.String())
	}

	if err := os.WriteFile(*out, res.Binary, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to write %s: %v\n", red("Error"), *out, err)
		os.Exit(1)
	}
	verbosity.Debugf("wrote %d bytes to %s", len(res.Binary), *out)
}

func runMetadata(args []string) {
	fs := flag.NewFlagSet("metadata", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: expected exactly one file argument\n", red("Error"))
		os.Exit(1)
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	sigs, err := compiler.GetSourceMetadata(string(src))
	if err != nil {
		verbosity.Errorf("%v", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(sigs)
}
