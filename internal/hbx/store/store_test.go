package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustOpen(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hbx.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPartials(t *testing.T) {
	s := mustOpen(t)

	if _, err := s.Partial("card"); !errors.Is(err, ErrNoPartial) {
		t.Errorf("Partial of missing = %v, want ErrNoPartial", err)
	}
	for name, src := range map[string]string{"card": "<div>{{title}}</div>", "badge": "<b>{{this}}</b>"} {
		if err := s.SetPartial(name, src); err != nil {
			t.Fatalf("SetPartial(%q): %v", name, err)
		}
	}
	if src, err := s.Partial("card"); err != nil || src != "<div>{{title}}</div>" {
		t.Errorf("Partial(card) = %q, %v", src, err)
	}

	var names []string
	err := s.ForEachPartial(func(name, src string) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"badge", "card"}, names); diff != "" {
		t.Errorf("ForEachPartial names (-want +got):\n%s", diff)
	}

	stop := errors.New("stop")
	if err := s.ForEachPartial(func(string, string) error { return stop }); err != stop {
		t.Errorf("ForEachPartial error = %v, want %v", err, stop)
	}
}

func TestPrograms(t *testing.T) {
	s := mustOpen(t)
	if err := s.SetPartial("card", "<div></div>"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProgram("card", []byte("package views")); err != nil {
		t.Fatal(err)
	}
	if code, err := s.Program("card"); err != nil || string(code) != "package views" {
		t.Errorf("Program(card) = %q, %v", code, err)
	}
	if err := s.DelPartial("card"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Program("card"); !errors.Is(err, ErrNoProgram) {
		t.Errorf("Program after DelPartial = %v, want ErrNoProgram", err)
	}
	if _, err := s.Partial("card"); !errors.Is(err, ErrNoPartial) {
		t.Errorf("Partial after DelPartial = %v, want ErrNoPartial", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbx.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartial("p", "<p></p>"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if src, err := s.Partial("p"); err != nil || src != "<p></p>" {
		t.Errorf("Partial after reopen = %q, %v", src, err)
	}
}
