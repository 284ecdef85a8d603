package parse

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kilianc/hbx/internal/hbx/diag"
)

// Handler receives markup events in document order. Ranges are byte ranges
// of the whole token in the source.
type Handler interface {
	OpenTag(name string, attrs []html.Attribute, r diag.Ranging) error
	// Text receives character data undecoded, exactly as it appears in the
	// source.
	Text(raw string, r diag.Ranging) error
	CloseTag(r diag.Ranging) error
}

// Tokenize streams src through the HTML tokenizer and reports events to h.
// Self-closing tags and void elements are reported as an open immediately
// followed by a close. Comments and doctypes are skipped.
func Tokenize(src string, h Handler) error {
	z := html.NewTokenizer(strings.NewReader(src))
	off := 0
	for {
		tt := z.Next()
		// Raw must be measured before Token, which lowercases tag names in
		// place.
		n := len(z.Raw())
		r := diag.Ranging{From: off, To: off + n}
		off += n

		var err error
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return z.Err()
		case html.TextToken:
			err = h.Text(src[r.From:r.To], r)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			name := tok.Data
			if strings.Contains(name, "{{") {
				// Keep the source case of expression paths in the name.
				name = src[r.From+1 : r.From+1+len(name)]
			}
			err = h.OpenTag(name, tok.Attr, r)
			if err == nil && (tt == html.SelfClosingTagToken || isVoid(tok.DataAtom)) {
				err = h.CloseTag(diag.PointRanging(r.To))
			}
		case html.EndTagToken:
			err = h.CloseTag(r)
		}
		if err != nil {
			return err
		}
	}
}

func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
