package db

import (
	"errors"
	"fmt"

	dbpkg "github.com/dtnitsch/doc2draft/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetMediaIDOrLatest returns the media id from args, or the most recently
// updated draft if not provided
func GetMediaIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	drafts, err := database.ListDrafts(1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest draft: %w", err)
	}
	if len(drafts) == 0 {
		return "", errors.New("no drafts found. Run 'doc2draft publish --link \"...\"' first")
	}
	return drafts[0].MediaID, nil
}
