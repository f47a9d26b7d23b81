// pageview-inspect is a developer utility: it parses a painted-HTML file,
// rebuilds the position index over it, and prints the resulting entries.
// Given a decoration file it also runs one decoration sync pass and prints
// the class/attribute state the bridge applied.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	pageview "github.com/scribeworks/pageview"
)

type decorationFile []struct {
	From  int               `json:"from"`
	To    int               `json:"to"`
	Attrs map[string]string `json:"attrs"`
}

func main() {
	leafOnly := flag.Bool("leaf-only", true, "index only deepest range-bearing elements")
	decorations := flag.String("decorations", "", "JSON file of decoration specs to sync")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pageview-inspect [flags] painted.html")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fatal(err)
	}
	doc, err := html.Parse(f)
	f.Close()
	if err != nil {
		fatal(fmt.Errorf("parse %s: %w", flag.Arg(0), err))
	}

	log := zap.NewNop()
	if *verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			fatal(err)
		}
	}

	index := pageview.NewPositionIndex()
	index.Rebuild(doc, pageview.RebuildOptions{LeafOnly: *leafOnly})

	entries := index.Entries()
	fmt.Printf("%d indexed elements\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  [%6d,%6d]  <%s>  %q\n", e.Start, e.End, e.Element.Data, snippet(e.Element))
	}

	if *decorations == "" {
		return
	}

	data, err := os.ReadFile(*decorations)
	if err != nil {
		fatal(err)
	}
	var specs decorationFile
	if err := sonic.Unmarshal(data, &specs); err != nil {
		fatal(fmt.Errorf("parse %s: %w", *decorations, err))
	}

	bridge := pageview.NewDecorationBridge(index, log)
	if err := bridge.RegisterProvider(pageview.DecorationProviderFunc(func() []pageview.DecorationSpec {
		out := make([]pageview.DecorationSpec, len(specs))
		for i, s := range specs {
			out[i] = pageview.DecorationSpec{From: s.From, To: s.To, Attrs: s.Attrs}
		}
		return out
	})); err != nil {
		fatal(err)
	}
	bridge.Sync()

	fmt.Println("\npost-sync element state:")
	for _, e := range entries {
		var attrs []string
		for _, a := range e.Element.Attr {
			attrs = append(attrs, a.Key+"="+a.Val)
		}
		fmt.Printf("  [%6d,%6d]  %s\n", e.Start, e.End, strings.Join(attrs, " "))
	}
}

func snippet(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	s := strings.TrimSpace(buf.String())
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "pageview-inspect:", err)
	os.Exit(1)
}
