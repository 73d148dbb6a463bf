package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/doc2draft/models"
)

// ErrNoResolver is reported for image nodes when the builder has no resolver.
var ErrNoResolver = errors.New("no image resolver configured")

// ImageResolver turns an embedded image reference into a durable URL.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolutionError records a failed image resolution. It never aborts a build.
type ResolutionError struct {
	Index int    // position of the image node in document order
	Ref   string // the embedded reference that failed
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve image %q (node %d): %v", e.Ref, e.Index, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// BuildResult is the outcome of one pass over a document.
type BuildResult struct {
	Paragraphs []*models.Paragraph
	Warnings   []error
	Dropped    int // orphan nodes seen before any paragraph could take them
	Roles      map[models.Role]int
}

// Builder folds classified nodes into a two-level paragraph tree.
type Builder struct {
	Classifier Classifier
	Resolver   ImageResolver
	// Workers > 1 resolves every image up front with that many goroutines.
	Workers int
	Logger  *slog.Logger
}

// cursor is the builder state threaded through the fold. New sub-paragraphs
// go to top.Subs; body text and images go to target.
type cursor struct {
	paragraphs []*models.Paragraph
	top        *models.Paragraph
	target     *models.Paragraph
}

// apply performs the text-only transitions. It reports false when the node
// had nowhere to attach and was dropped.
func (c cursor) apply(role models.Role, text string) (cursor, bool) {
	switch role {
	case models.RoleLead:
		p := &models.Paragraph{Lead: text}
		c.paragraphs = append(c.paragraphs, p)
		c.top = p
		c.target = p
	case models.RoleSubLead:
		if c.top == nil {
			return c, false
		}
		c.target = c.top.AddSub(text)
	case models.RoleBody:
		if c.target == nil {
			return c, false
		}
		c.target.AddBody(text)
	}
	return c, true
}

type resolution struct {
	url string
	err error
}

// Build runs the single left-to-right pass. The returned error is non-nil only
// when ctx is already done before the pass starts.
func (b *Builder) Build(ctx context.Context, nodes []Node) (*BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := b.logger()

	res := &BuildResult{Roles: make(map[models.Role]int, len(models.Roles))}
	roles := make([]models.Role, len(nodes))
	for i, n := range nodes {
		roles[i] = b.Classifier.Classify(n)
		res.Roles[roles[i]]++
	}

	var prefetched map[int]resolution
	if b.Workers > 1 {
		prefetched = b.prefetch(ctx, nodes, roles)
	}

	var cur cursor
	for i, n := range nodes {
		role := roles[i]
		if role != models.RoleImage {
			var ok bool
			cur, ok = cur.apply(role, n.Text())
			if !ok {
				res.Dropped++
				logger.Debug("Dropping orphan node", "index", i, "role", role.String(), "tag", n.Tag())
			}
			continue
		}

		if cur.target == nil {
			res.Dropped++
			logger.Debug("Dropping orphan image", "index", i)
			continue
		}
		if cur.target.ImgURL != "" {
			logger.Debug("Paragraph already has an image", "index", i, "lead", cur.target.Lead)
			continue
		}

		ref, _ := n.Image()
		r, ok := prefetched[i]
		if !ok {
			r = b.resolve(ctx, ref)
		}
		if r.err != nil {
			logger.Warn("Image resolution failed", "index", i, "ref", ref, "error", r.err)
			res.Warnings = append(res.Warnings, &ResolutionError{Index: i, Ref: ref, Err: r.err})
			continue
		}
		cur.target.SetImage(r.url)
	}

	res.Paragraphs = cur.paragraphs
	return res, nil
}

func (b *Builder) resolve(ctx context.Context, ref string) resolution {
	if b.Resolver == nil {
		return resolution{err: ErrNoResolver}
	}
	if ref == "" {
		return resolution{err: errors.New("image has no source")}
	}
	if err := ctx.Err(); err != nil {
		return resolution{err: err}
	}
	url, err := b.Resolver.Resolve(ctx, ref)
	return resolution{url: url, err: err}
}

// prefetch resolves every image node concurrently. Results are keyed by node
// index so the fold still writes each URL to the paragraph that owns it.
func (b *Builder) prefetch(ctx context.Context, nodes []Node, roles []models.Role) map[int]resolution {
	type job struct {
		index int
		ref   string
	}
	type result struct {
		index int
		resolution
	}

	var pending []job
	for i, role := range roles {
		if role == models.RoleImage {
			ref, _ := nodes[i].Image()
			pending = append(pending, job{index: i, ref: ref})
		}
	}
	if len(pending) == 0 {
		return nil
	}

	jobs := make(chan job, len(pending))
	results := make(chan result, len(pending))
	var wg sync.WaitGroup

	for w := 1; w <= b.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{index: j.index, resolution: b.resolve(ctx, j.ref)}
			}
		}()
	}

	for _, j := range pending {
		jobs <- j
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make(map[int]resolution, len(pending))
	for r := range results {
		out[r.index] = r.resolution
	}
	return out
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
