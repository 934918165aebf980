// Package archive walks an uploaded ZIP and parses its XML entries into
// generic document trees. Entries that fail to open or parse are logged and
// skipped; only a broken archive fails the batch.
package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/bidsync/internal/xmldoc"
)

// Entry is one successfully parsed XML file from the archive.
type Entry struct {
	Path string
	Doc  *xmldoc.Node
}

// Process parses every .xml entry in the archive, up to concurrency entries
// in parallel. Returned entries preserve archive order.
func Process(ctx context.Context, r io.ReaderAt, size int64, concurrency int) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, eris.Wrap(err, "archive: open zip")
	}

	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		files = append(files, f)
	}

	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := parseEntry(f)
			if err != nil {
				zap.L().Warn("skipping unreadable archive entry",
					zap.String("entry", f.Name),
					zap.Error(err),
				)
				return nil
			}
			results[i] = &Entry{Path: f.Name, Doc: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "archive: process")
	}

	entries := make([]Entry, 0, len(results))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

// ProcessFile opens an archive on disk and processes it.
func ProcessFile(ctx context.Context, archivePath string, concurrency int) ([]Entry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, eris.Wrapf(err, "archive: open %s", archivePath)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, eris.Wrapf(err, "archive: stat %s", archivePath)
	}

	return Process(ctx, f, info.Size(), concurrency)
}

func parseEntry(f *zip.File) (*xmldoc.Node, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrap(err, "open entry")
	}
	defer rc.Close() //nolint:errcheck

	doc, err := xmldoc.Parse(rc)
	if err != nil {
		return nil, eris.Wrap(err, "parse entry")
	}
	return doc, nil
}
