package analyze

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/doc2draft/internal/common"
	"github.com/dtnitsch/doc2draft/internal/fetch"
	"github.com/dtnitsch/doc2draft/pkg/parser"
	"github.com/urfave/cli/v2"
)

const maxTextWidth = 48

// AnalyzeAction prints the role of every top-level node of a document
// without building a tree or touching any image.
func AnalyzeAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	var raw []byte
	pageURL := c.String("link")
	switch {
	case c.String("file") != "":
		raw, err = os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
	case pageURL != "":
		if pageURL, err = common.ValidateLink(pageURL); err != nil {
			return err
		}
		f, err := fetch.NewFetcher(cfg, logger)
		if err != nil {
			return err
		}
		if raw, err = f.GetHtmlBytes(c.Context, pageURL); err != nil {
			return fmt.Errorf("failed to fetch document: %w", err)
		}
	default:
		return fetch.ErrNoInput
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	src, err := parser.Locate(doc, pageURL)
	if err != nil {
		return err
	}

	policy, err := parser.ParseHeadingPolicy(cfg.HeadingStyle)
	if err != nil {
		return err
	}
	PrintRoles(os.Stdout, src, parser.Classifier{Policy: policy})
	return nil
}

// PrintRoles writes one table row per node: index, tag, role and text.
func PrintRoles(w io.Writer, src *parser.Source, classifier parser.Classifier) {
	if src.Fallback {
		fmt.Fprintln(w, "# editor container not found, nodes located by readability")
	}
	fmt.Fprintf(w, "%-5s %-12s %-9s %s\n", "#", "Tag", "Role", "Text")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for i, n := range src.Nodes {
		text := n.Text()
		if ref, ok := n.Image(); ok {
			text = ref
		}
		fmt.Fprintf(w, "%-5d %-12s %-9s %s\n", i, n.Tag(), classifier.Classify(n), truncate(text, maxTextWidth))
	}

	fmt.Fprintf(w, "\nTotal: %d nodes\n", len(src.Nodes))
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
