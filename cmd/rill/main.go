package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanity-io/litter"
	"gopkg.in/urfave/cli.v1"

	"github.com/rill-lang/rill/internal/diag"
	"github.com/rill-lang/rill/internal/driver"
)

func main() {
	app := cli.NewApp()
	app.Name = "rill"
	app.Usage = "compiler for the Rill language"
	app.HideVersion = true

	app.Commands = []cli.Command{
		{
			Name:      "build",
			Usage:     "compile a source file and write its IR artifact",
			ArgsUsage: "<file.rl>",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "o, output",
					Usage: "output path for the IR text (default: source path with .ir)",
				},
				cli.BoolFlag{
					Name:  "dump-ast",
					Usage: "dump the parsed AST to stdout",
				},
			},
			Action: buildAction,
		},
		{
			Name:      "emit-ir",
			Usage:     "compile a source file and print its IR to stdout",
			ArgsUsage: "<file.rl>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "dump-ast",
					Usage: "dump the parsed AST to stdout",
				},
			},
			Action: emitAction,
		},
		{
			Name:      "run",
			Usage:     "compile a source file and execute its run function",
			ArgsUsage: "<file.rl>",
			Action:    runAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		if _, ok := err.(cli.ExitCoder); !ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cli.HandleExitCoder(err)
	}
}

// compile loads and compiles the file named by the first argument. A nil
// result means the caller should stop; the returned ExitCoder carries the
// process status (1 for diagnostics, 2 for usage mistakes).
func compile(ctx *cli.Context) (*driver.Result, string, error) {
	if ctx.NArg() != 1 {
		return nil, "", cli.NewExitError("usage: rill "+ctx.Command.Name+" <file.rl>", 2)
	}
	path := ctx.Args().First()

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", cli.NewExitError(fmt.Sprintf("rill: %v", err), 2)
	}

	res, err := driver.Compile(string(source), filepath.Base(path))
	if err != nil {
		// Compiler-internal invariant violation; not a program error.
		return nil, "", cli.NewExitError(fmt.Sprintf("rill: %v", err), 1)
	}

	if ctx.Bool("dump-ast") && res.File != nil {
		litter.Dump(res.File)
	}

	if res.Failed() {
		f := diag.NewFormatter(os.Stderr, string(source))
		f.FormatAll(res.Diagnostics)
		return nil, "", cli.NewExitError("", 1)
	}

	return res, path, nil
}

func buildAction(ctx *cli.Context) error {
	res, path, err := compile(ctx)
	if err != nil {
		return err
	}

	out := ctx.String("output")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".ir"
	}

	if err := os.WriteFile(out, []byte(res.Module.PrettyPrint()+"\n"), 0o644); err != nil {
		return cli.NewExitError(fmt.Sprintf("rill: %v", err), 1)
	}
	return nil
}

func emitAction(ctx *cli.Context) error {
	res, _, err := compile(ctx)
	if err != nil {
		return err
	}

	fmt.Println(res.Module.PrettyPrint())
	return nil
}

func runAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: rill run <file.rl>", 2)
	}
	path := ctx.Args().First()

	source, err := os.ReadFile(path)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("rill: %v", err), 2)
	}

	code, res, err := driver.Run(string(source), filepath.Base(path), os.Stdout)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("rill: %v", err), 1)
	}
	if res.Failed() {
		f := diag.NewFormatter(os.Stderr, string(source))
		f.FormatAll(res.Diagnostics)
		return cli.NewExitError("", 1)
	}

	// The program's own result becomes the process exit status.
	if code != 0 {
		return cli.NewExitError("", code)
	}
	return nil
}
