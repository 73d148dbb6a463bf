package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/doc2draft/internal/analyze"
	"github.com/dtnitsch/doc2draft/internal/db"
	"github.com/dtnitsch/doc2draft/internal/fetch"
	"github.com/dtnitsch/doc2draft/internal/publish"
	"github.com/dtnitsch/doc2draft/internal/render"
	"github.com/dtnitsch/doc2draft/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "doc2draft",
		Usage: "Turn a Shimo document into a WeChat article draft",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output, including dropped nodes",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent image uploads (overrides config)",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for paras.yaml and result.html (overrides config)",
			},
			&cli.StringFlag{
				Name:  "heading-policy",
				Usage: "promote or strict (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Parse a document and write paras.yaml and result.html",
				Flags:  append(documentFlags(), &cli.BoolFlag{Name: "dry-run", Usage: "Keep source image URLs, upload nothing"}),
				Action: fetch.FetchAction,
			},
			{
				Name:  "publish",
				Usage: "Parse a document and create or update its draft",
				Flags: append(documentFlags(),
					&cli.StringFlag{Name: "media-id", Usage: "Draft to update"},
					&cli.BoolFlag{Name: "new", Usage: "Always create a new draft"},
				),
				Action: publish.PublishAction,
			},
			{
				Name:  "render",
				Usage: "Render a saved paras.yaml to HTML",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "snapshot", Usage: "Snapshot to render (default: <output-dir>/paras.yaml)"},
					&cli.StringFlag{Name: "out", Usage: "Output file (default: <output-dir>/result.html)"},
					&cli.StringFlag{Name: "template", Usage: "Custom html/template file"},
					&cli.BoolFlag{Name: "minify", Usage: "Minify the rendered HTML"},
				},
				Action: render.RenderAction,
			},
			{
				Name:  "inspect",
				Usage: "Print the role of every node in a document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "link", Aliases: []string{"l"}, Usage: "Document URL"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local HTML file"},
				},
				Action: analyze.AnalyzeAction,
			},
			{
				Name:  "drafts",
				Usage: "List drafts written by this tool",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum drafts to show (0 for all)"},
				},
				Action: db.DraftsAction,
			},
			{
				Name:      "draft",
				Usage:     "Show the revisions of a draft",
				ArgsUsage: "[media-id]",
				Action:    db.DraftAction,
			},
			{
				Name:   "coldstart",
				Usage:  "Print a quick start guide",
				Action: coldstartAction,
			},
			{
				Name:  "cache",
				Usage: "Manage the download cache",
				Subcommands: []*cli.Command{
					{
						Name:  "purge",
						Usage: "Remove expired cache entries",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "all", Usage: "Remove every entry, not just expired ones"},
						},
						Action: fetch.PurgeAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func documentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "link", Aliases: []string{"l"}, Usage: "Document URL"},
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local HTML file; --link is then only recorded as the source"},
		&cli.StringFlag{Name: "template", Usage: "Custom html/template file"},
	}
}

func coldstartAction(c *cli.Context) error {
	fmt.Print(help.ColdstartYAML)
	return nil
}
