// Command hulkc compiles a single HULK source file down to textual LLVM
// IR. Argument parsing follows the teacher compiler's own hand-rolled
// util/args.go style rather than a flag-parsing library: a short,
// fixed set of boolean switches plus one path-valued flag, scanned
// left to right.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hulk-lang/hulkc/internal/analyzer"
	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/codegen"
	"github.com/hulk-lang/hulkc/internal/lexer"
	"github.com/hulk-lang/hulkc/internal/parser"
	"github.com/hulk-lang/hulkc/internal/types"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// options holds the parsed command line, mirroring vslc's util.Options.
type options struct {
	src         string
	out         string
	tokenStream bool
	verbose     bool
	dumpTypes   bool
	noColor     bool
}

func parseArgs(args []string) (options, error) {
	opt := options{out: "output.ll"}
	i := 0
	for ; i < len(args); i++ {
		switch args[i] {
		case "-h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag -o but no argument")
			}
			i++
			opt.out = args[i]
		case "-ts":
			opt.tokenStream = true
		case "-vb":
			opt.verbose = true
		case "-dump-types":
			opt.dumpTypes = true
		case "-no-color":
			opt.noColor = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.src = args[i]
		}
	}
	if opt.src == "" {
		return opt, fmt.Errorf("no source file given")
	}
	return opt, nil
}

func printHelp() {
	fmt.Println("usage: hulkc [-o path] [-ts] [-vb] [-dump-types] [-no-color] <source.hulk>")
	fmt.Println("  -o           output path (default output.ll)")
	fmt.Println("  -ts          print the token stream and exit")
	fmt.Println("  -vb          verbose: print each top-level statement's resolved type before codegen")
	fmt.Println("  -dump-types  print the finalized type registry as YAML to stderr")
	fmt.Println("  -no-color    force-disable ANSI diagnostics")
}

func useColor(opt options) bool {
	if opt.noColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func printTokenStream(src string) {
	l := lexer.New(src)
	for {
		tok := l.Next()
		fmt.Println(tok)
		if tok.Type == lexer.EOF || tok.Type == lexer.ERROR {
			break
		}
	}
}

// typeDump is the YAML-serializable projection of a finalized
// types.Registry entry, for -dump-types.
type typeDump struct {
	Name   string   `yaml:"name"`
	Parent string   `yaml:"parent,omitempty"`
	TypeID int      `yaml:"type_id"`
	Fields []string `yaml:"fields,omitempty"`
	Vtable []string `yaml:"vtable,omitempty"`
}

func dumpTypes(reg *types.Registry) error {
	var dump []typeDump
	for _, t := range reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		d := typeDump{Name: t.Name, TypeID: t.TypeID}
		if t.Parent != nil {
			d.Parent = t.Parent.Name
		}
		for _, f := range t.Layout {
			d.Fields = append(d.Fields, f.Name+": "+f.TypeName)
		}
		for _, m := range t.VTable {
			d.Vtable = append(d.Vtable, m.Owner+"."+m.Name)
		}
		dump = append(dump, d)
	}
	out, err := yaml.Marshal(dump)
	if err != nil {
		return err
	}
	_, err = os.Stderr.Write(out)
	return err
}

func run(opt options) int {
	raw, err := os.ReadFile(opt.src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read source file: %s\n", err)
		return 1
	}
	src := string(raw)

	if opt.tokenStream {
		printTokenStream(src)
		return 0
	}

	prog, err := parser.Parse(src)
	if err != nil {
		fmt.Printf("parse error: %s\n", err)
		return 1
	}

	reg, bag := analyzer.Analyze(prog)
	if !bag.Empty() {
		color := useColor(opt)
		for _, d := range bag.All() {
			fmt.Println(d.Report(src, color))
		}
		return 3
	}

	if opt.dumpTypes {
		if err := dumpTypes(reg); err != nil {
			fmt.Fprintf(os.Stderr, "could not dump type registry: %s\n", err)
			return 1
		}
	}

	if opt.verbose {
		printProgram(prog)
	}

	ir := codegen.Generate(prog, reg)
	if err := os.WriteFile(opt.out, []byte(ir), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "could not write output: %s\n", err)
		return 1
	}
	return 0
}

// printProgram is a minimal, -vb-only dump of each top-level
// statement's resolved type, not a full pretty-printer: enough to see
// what the analyzer decided without duplicating a tree-printer the
// spec never asked for.
func printProgram(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			fmt.Printf("expr @ %v : %v\n", s.X.Span(), s.X.ResolvedType())
		case *ast.FunctionDef:
			fmt.Printf("function %s : %v\n", s.Name, s.Body.ResolvedType())
		case *ast.TypeDef:
			fmt.Printf("type %s\n", s.Name)
		}
	}
}

func main() {
	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "command line argument error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(run(opt))
}
