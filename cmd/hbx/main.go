package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/kilianc/hbx/internal/hbx/diag"
	"github.com/kilianc/hbx/internal/hbx/outfile"
	"github.com/kilianc/hbx/pkg/hbx"
)

// config is what every generated file in a run shares.
type config struct {
	root    string
	cwd     string
	pkg     string
	helpers []string
}

const usage = `Usage: hbx [flags] [patterns...]

hbx writes a Go render function to <name>.hbx.go for every <name>.hbx
template it is given. A template may use the other templates of its
directory as partials, by base name.

Patterns select templates the way go list selects packages. "dir/..."
walks dir and everything below it, "dir" takes the templates directly in
dir, and "file.hbx" takes that one template. Without patterns hbx walks
the working directory.

Flags:
`

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	rootFlag := flag.String("root", "", "module root; generated files name their template relative to it (default: the nearest directory holding go.mod)")
	dirFlag := flag.String("dir", "", "generate for the templates directly in this directory only, e.g. from a go:generate line")
	pkgFlag := flag.String("pkg", "", "package clause of generated files (default: the directory name)")
	helpersFlag := flag.String("helpers", "", "comma-separated custom helpers the templates call")
	flag.Parse()

	diag.SetColor(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	cfg := config{pkg: strings.TrimSpace(*pkgFlag)}
	for _, h := range strings.Split(*helpersFlag, ",") {
		if h = strings.TrimSpace(h); h != "" {
			cfg.helpers = append(cfg.helpers, h)
		}
	}

	var err error
	if cfg.cwd, err = os.Getwd(); err != nil {
		fatal(err)
	}
	root := *rootFlag
	if root == "" {
		if root, err = findModuleRoot(cfg.cwd); err != nil {
			fatal(err)
		}
	}
	if cfg.root, err = cfg.abs(root); err != nil {
		fatal(err)
	}

	dir := strings.TrimSpace(*dirFlag)
	if dir != "" {
		if flag.NArg() != 0 {
			fatal(errors.New("hbx: -dir and patterns are mutually exclusive"))
		}
		if dir, err = cfg.abs(dir); err != nil {
			fatal(err)
		}
		if err := generateDir(cfg, dir); err != nil {
			fatal(err)
		}
		return
	}

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	paths, err := cfg.collect(patterns)
	if err != nil {
		fatal(err)
	}
	var allErr error
	for _, pth := range paths {
		allErr = errors.Join(allErr, generateFile(cfg, pth))
	}
	if allErr != nil {
		fatal(allErr)
	}
}

func fatal(err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			diag.ShowError(os.Stderr, e)
		}
	} else {
		diag.ShowError(os.Stderr, err)
	}
	os.Exit(1)
}

func findModuleRoot(start string) (string, error) {
	for d := start; ; d = filepath.Dir(d) {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d, nil
		}
		if filepath.Dir(d) == d {
			return "", fmt.Errorf("hbx: no go.mod in %s or above", start)
		}
	}
}

// abs resolves p against the working directory of the run.
func (cfg config) abs(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.cwd, p)
	}
	return filepath.Abs(p)
}

// collect expands patterns into a sorted list of template paths.
func (cfg config) collect(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if base, recursive := strings.CutSuffix(pat, "..."); recursive {
			dir, err := cfg.abs(strings.TrimSuffix(base, "/"))
			if err != nil {
				return nil, err
			}
			paths, err := walkTemplates(dir)
			if err != nil {
				return nil, err
			}
			add(paths...)
			continue
		}
		p, err := cfg.abs(pat)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		switch {
		case st.IsDir():
			paths, err := templatesIn(p)
			if err != nil {
				return nil, err
			}
			add(paths...)
		case isTemplate(p):
			add(p)
		default:
			return nil, fmt.Errorf("hbx: %s is not a template", p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func isTemplate(path string) bool { return strings.HasSuffix(path, ".hbx") }

// templatesIn returns the templates directly in dir, sorted by name.
func templatesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isTemplate(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// walkTemplates returns the templates below root. Hidden, vendor and
// node_modules directories are skipped.
func walkTemplates(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case de.IsDir():
			name := de.Name()
			if path != root && (name == "vendor" || name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
		case isTemplate(path):
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func generateDir(cfg config, dir string) error {
	paths, err := templatesIn(dir)
	if err != nil {
		return err
	}
	for _, pth := range paths {
		if err := generateFile(cfg, pth); err != nil {
			return err
		}
	}
	return nil
}

func generateFile(cfg config, pth string) error {
	b, err := os.ReadFile(pth)
	if err != nil {
		return err
	}
	partials, err := siblingPartials(filepath.Dir(pth))
	if err != nil {
		return err
	}
	// Generated files name their template relative to the module root so
	// they do not depend on where the module is checked out.
	name := pth
	if rel, err := filepath.Rel(cfg.root, pth); err == nil {
		name = filepath.ToSlash(rel)
	}
	src, err := hbx.GenerateFile(name, b, hbx.Declarations{
		Package:  cfg.pkg,
		Helpers:  cfg.helpers,
		Partials: partials,
	})
	if err != nil {
		return err
	}
	_, err = outfile.WriteGeneratedFile(pth+".go", src)
	return err
}

// siblingPartials returns the base names of the templates in dir.
func siblingPartials(dir string) ([]string, error) {
	paths, err := templatesIn(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = strings.TrimSuffix(filepath.Base(p), ".hbx")
	}
	return names, nil
}
