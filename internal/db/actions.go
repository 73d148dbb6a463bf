package db

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/doc2draft/internal/common"
	dbpkg "github.com/dtnitsch/doc2draft/pkg/db"
	"github.com/urfave/cli/v2"
)

func DraftsAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	drafts, err := database.ListDrafts(c.Int("limit"))
	if err != nil {
		return err
	}

	if len(drafts) == 0 {
		fmt.Println("No drafts found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %-30s %-30s %s\n",
		"ID", "Updated", "Revisions", "Media ID", "Title", "Source")
	fmt.Println(strings.Repeat("-", 120))

	for _, d := range drafts {
		fmt.Printf("%-6d %-20s %-10d %-30s %-30s %s\n",
			d.DraftID,
			d.UpdatedAt.Format("2006-01-02 15:04:05"),
			d.RevisionCount,
			d.MediaID,
			d.Title,
			d.SourceURL,
		)
	}

	fmt.Printf("\nTotal: %d drafts\n", len(drafts))
	fmt.Printf("\nTip: Use 'doc2draft draft <media-id>' to see revisions\n")

	return nil
}

// DraftAction shows the revision history of one draft
func DraftAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	mediaID, err := GetMediaIDOrLatest(c, database)
	if err != nil {
		return err
	}

	revs, err := database.ListRevisions(mediaID)
	if err != nil {
		return err
	}

	fmt.Printf("Draft %s\n", mediaID)
	fmt.Println(strings.Repeat("=", 60))
	if len(revs) == 0 {
		fmt.Println("No revisions recorded")
		return nil
	}

	for i, r := range revs {
		fmt.Printf("%2d. [%s] %s\n", i+1, r.Action, r.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    Paragraphs: %d | Images: %d | Warnings: %d | Hash: %.12s\n",
			r.ParagraphCount, r.ImageCount, r.WarningCount, r.ContentHash)
	}

	return nil
}
