package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Imperatorn/ctod"
	"github.com/Imperatorn/ctod/cpp"
	"github.com/Imperatorn/ctod/parse"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	app := &cli.App{
		Name:  "ctod",
		Usage: "parse C declarations into structural type trees",
		Commands: []*cli.Command{
			tokensCommand(),
			cppCommand(),
			declsCommand(),
			explainCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func inputFile(c *cli.Context) (string, *os.File, error) {
	path := c.Args().First()
	if path == "" {
		return "", nil, errors.New("expected a source file argument")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "opening %s", path)
	}
	return path, f, nil
}

func includeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "include",
		Aliases: []string{"I"},
		Usage:   "';' separated list of directories to search for headers",
	}
}

func searcherFromFlag(c *cli.Context) cpp.IncludeSearcher {
	if !c.IsSet("include") {
		// No searcher; include directives are ignored.
		return nil
	}
	return cpp.NewStandardIncludeSearcher(c.String("include"))
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "dump the raw token stream before preprocessing",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			path, f, err := inputFile(c)
			if err != nil {
				return err
			}
			defer f.Close()
			lx := cpp.Lex(path, f)
			for {
				t, err := lx.Next()
				if err != nil {
					return err
				}
				if t.Kind == cpp.EOF {
					return nil
				}
				fmt.Printf("%s %s\n", t.Kind, t)
			}
		},
	}
}

func cppCommand() *cli.Command {
	return &cli.Command{
		Name:      "cpp",
		Usage:     "dump the token stream after preprocessing",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{includeFlag()},
		Action: func(c *cli.Context) error {
			path, f, err := inputFile(c)
			if err != nil {
				return err
			}
			defer f.Close()
			toks, err := ctod.Preprocess(path, f, searcherFromFlag(c))
			if err != nil {
				return err
			}
			for _, t := range toks {
				if t.Kind == cpp.EOF {
					break
				}
				fmt.Printf("%s %s\n", t.Kind, t)
			}
			return nil
		},
	}
}

type declReport struct {
	Name    string      `json:"name"`
	Pos     string      `json:"pos"`
	Storage string      `json:"storage,omitempty"`
	Inline  bool        `json:"inline,omitempty"`
	Body    bool        `json:"body,omitempty"`
	Canon   string      `json:"canon"`
	Explain string      `json:"explain"`
	Type    parse.CType `json:"type"`
}

func declsCommand() *cli.Command {
	return &cli.Command{
		Name:      "decls",
		Usage:     "parse declarations and dump the type trees as JSON",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{includeFlag()},
		Action: func(c *cli.Context) error {
			path, f, err := inputFile(c)
			if err != nil {
				return err
			}
			defer f.Close()
			decls, err := ctod.Parse(path, f, searcherFromFlag(c))
			if err != nil {
				return err
			}
			reports := make([]declReport, 0, len(decls))
			for _, d := range decls {
				reports = append(reports, declReport{
					Name:    d.Name,
					Pos:     d.Pos.String(),
					Storage: d.Storage.String(),
					Inline:  d.Inline,
					Body:    d.HasBody,
					Canon:   parse.CanonString(d),
					Explain: parse.Explain(d),
					Type:    d.Type,
				})
			}
			out, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encoding declarations")
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "describe each declaration in English",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{includeFlag()},
		Action: func(c *cli.Context) error {
			path, f, err := inputFile(c)
			if err != nil {
				return err
			}
			defer f.Close()
			decls, err := ctod.Parse(path, f, searcherFromFlag(c))
			if err != nil {
				return err
			}
			for _, d := range decls {
				fmt.Println(parse.Explain(d))
			}
			return nil
		},
	}
}
