package render

import (
	"fmt"

	"github.com/dtnitsch/doc2draft/internal/common"
	renderpkg "github.com/dtnitsch/doc2draft/pkg/render"
	"github.com/dtnitsch/doc2draft/pkg/snapshot"
	"github.com/dtnitsch/doc2draft/pkg/storage"
	"github.com/urfave/cli/v2"
)

// RenderAction re-renders a saved paras.yaml, typically after hand edits.
func RenderAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	store := &storage.Storage{Dir: cfg.OutputDir}

	snapPath := c.String("snapshot")
	if snapPath == "" {
		snapPath = store.Path(storage.SnapshotFile)
	}
	doc, err := snapshot.LoadFile(snapPath)
	if err != nil {
		return err
	}

	renderer, err := renderpkg.New(c.String("template"))
	if err != nil {
		return err
	}
	html, err := renderer.Render(doc)
	if err != nil {
		return err
	}
	if c.Bool("minify") {
		if html, err = renderpkg.Minify(html); err != nil {
			return err
		}
	}

	out := c.String("out")
	if out == "" {
		out = storage.ResultFile
	}
	written, err := store.SaveFile(out, []byte(html))
	if err != nil {
		return err
	}

	logger.Info("Snapshot rendered", "snapshot", snapPath, "out", written, "paragraphs", len(doc.Paragraphs))
	fmt.Println(written)
	return nil
}
