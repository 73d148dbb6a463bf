package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/doc2draft/models"
)

func sampleDoc() *models.Document {
	return &models.Document{
		Title:    "Weekly",
		Author:   "Editor",
		Language: "en",
		Paragraphs: []*models.Paragraph{
			{
				Lead:   "Intro，Overview",
				Body:   []string{"hello", "a < b"},
				ImgURL: "https://mmbiz.qpic.cn/a.png",
				Subs: []*models.Paragraph{
					{Lead: "Detail", Body: []string{"world"}},
				},
			},
		},
	}
}

func TestRender(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("failed to load built-in template: %v", err)
	}

	out, err := r.Render(sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`lang="en"`,
		"<span>Intro</span>",
		"<span>Overview</span>",
		`src="https://mmbiz.qpic.cn/a.png"`,
		"<p style=\"margin:0 0 12px;\">hello</p>",
		"a &lt; b",
		">Detail</h3>",
		"world",
		"Editor",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestRender_DefaultLanguage(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("failed to load built-in template: %v", err)
	}

	out, err := r.Render(&models.Document{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `lang="zh"`) {
		t.Errorf("expected zh default, got %s", out)
	}
	if strings.Contains(out, "<h2") {
		t.Error("empty document should render no sections")
	}
}

func TestNew_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	tmpl := `{{range .Paragraphs}}[{{.Lead}}]{{end}}`
	if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	r, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := r.Render(sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[Intro，Overview]" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNew_MissingTemplate(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing template file")
	}
}

func TestMinify(t *testing.T) {
	in := "<section>\n  <p>hello</p>\n\n  <p>world</p>\n</section>\n"
	out, err := Minify(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("expected newlines removed, got %q", out)
	}
	if !strings.Contains(out, "<p>hello</p>") || !strings.Contains(out, "<p>world</p>") {
		t.Errorf("expected content preserved, got %q", out)
	}
}
