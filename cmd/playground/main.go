package main

import (
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/internal/hbx/store"
	"github.com/kilianc/hbx/pkg/hbx"
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: playground -template page.hbx [flags]")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Watches a template, its data and its partials, and prints the rendered HTML on changes.")
		flag.PrintDefaults()
	}
	templateFlag := flag.String("template", "", "template to render")
	dataFlag := flag.String("data", "", "YAML or JSON file holding the render data")
	partialsFlag := flag.String("partials", "", "directory of *.hbx partials, registered by base name")
	storeFlag := flag.String("store", "", "bbolt database that partials are saved to and preloaded from")
	interval := flag.Duration("interval", 300*time.Millisecond, "watch polling interval")
	flag.Parse()

	if flag.NArg() != 0 || *templateFlag == "" {
		flag.Usage()
		os.Exit(2)
	}
	diag.SetColor(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	pg := &playground{template: *templateFlag, data: *dataFlag, partials: *partialsFlag}
	if *storeFlag != "" {
		st, err := store.Open(*storeFlag)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
		pg.store = st
	}
	watch(pg, *interval, os.Stdout, os.Stderr)
}

type playground struct {
	template string
	data     string
	partials string
	store    *store.Store
}

// inputs reads every watched file. Keys are paths.
func (pg *playground) inputs() (map[string][]byte, error) {
	files := map[string][]byte{}
	paths := []string{pg.template}
	if pg.data != "" {
		paths = append(paths, pg.data)
	}
	if pg.partials != "" {
		matches, err := filepath.Glob(filepath.Join(pg.partials, "*.hbx"))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files[p] = b
	}
	return files, nil
}

func hash(files map[string][]byte) [32]byte {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	h := sha256.New()
	for _, p := range paths {
		fmt.Fprintf(h, "%s\x00%d\x00", p, len(files[p]))
		h.Write(files[p])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// render compiles and renders the template from a snapshot of the inputs.
func (pg *playground) render(files map[string][]byte) (string, error) {
	e := hbx.New()

	partials := partialSource{}
	for p, b := range files {
		if p != pg.template && strings.HasSuffix(p, ".hbx") {
			partials[strings.TrimSuffix(filepath.Base(p), ".hbx")] = string(b)
		}
	}
	if pg.store != nil {
		for name, src := range partials {
			if err := pg.store.SetPartial(name, src); err != nil {
				return "", err
			}
		}
		if err := e.LoadPartials(pg.store); err != nil {
			return "", err
		}
		for name, src := range partials {
			code, err := e.Generate(src, hbx.GenerateOptions{Name: name, Package: "partials", Func: hbx.FuncName(name)})
			if err != nil {
				return "", err
			}
			if err := pg.store.SetProgram(name, code); err != nil {
				return "", err
			}
		}
	} else if err := e.LoadPartials(partials); err != nil {
		return "", err
	}

	var data any
	if pg.data != "" {
		if err := yaml.Unmarshal(files[pg.data], &data); err != nil {
			return "", fmt.Errorf("%s: %w", pg.data, err)
		}
	}

	tpl, err := e.Compile(string(files[pg.template]), hbx.Name(pg.template))
	if err != nil {
		return "", err
	}
	return tpl.HTML(data)
}

func watch(pg *playground, interval time.Duration, stdout, stderr io.Writer) {
	var lastHash [32]byte
	var have bool

	for {
		files, err := pg.inputs()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "playground: read error: %v\n", err)
			time.Sleep(interval)
			continue
		}
		h := hash(files)
		if !have || h != lastHash {
			lastHash = h
			have = true

			html, err := pg.render(files)
			if err != nil {
				diag.ShowError(stderr, err)
			} else {
				_, _ = fmt.Fprintln(stdout, html)
			}
		}

		time.Sleep(interval)
	}
}

// partialSource serves partials read from a directory.
type partialSource map[string]string

func (s partialSource) ForEachPartial(f func(name, src string) error) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := f(name, s[name]); err != nil {
			return err
		}
	}
	return nil
}

func fatal(err error) {
	var ce *hbx.Error
	if !errors.As(err, &ce) {
		err = fmt.Errorf("playground: %w", err)
	}
	diag.ShowError(os.Stderr, err)
	os.Exit(1)
}
