package analyze

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/doc2draft/pkg/parser"
)

func TestPrintRoles(t *testing.T) {
	html := `<html><body><div class="ql-editor">
<h1>Intro</h1><p>hello</p><p><strong>Note</strong></p><p><img src="a.png"></p><p></p>
</div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	src, err := parser.Locate(doc, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	PrintRoles(&buf, src, parser.Classifier{})
	out := buf.String()

	for _, want := range []string{"lead", "body", "sub_lead", "image", "empty", "a.png", "Total: 5 nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "readability") {
		t.Error("editor documents should not mention the fallback")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "short", width: 10, want: "short"},
		{in: "abcdef", width: 4, want: "abc…"},
		{in: "你好世界你好", width: 4, want: "你好世…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
