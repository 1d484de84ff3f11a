package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/matzehuels/pnrjson/pkg/cache"
	"github.com/matzehuels/pnrjson/pkg/errors"
	pkgio "github.com/matzehuels/pnrjson/pkg/io"
)

// Load reads the design description at path. The format comes from the
// file extension.
func (r *Runner) Load(ctx context.Context, path string) (*Source, error) {
	format, err := pkgio.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	src, err := r.LoadBytes(ctx, data, format)
	if err != nil {
		return nil, err
	}
	src.Path = path
	return src, nil
}

// LoadBytes decodes a design description held in memory.
func (r *Runner) LoadBytes(ctx context.Context, data []byte, format pkgio.Format) (*Source, error) {
	d, err := pkgio.ReadDesign(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	src := &Source{
		Design: d,
		Hash:   cache.Hash(append([]byte(string(format)+"\x00"), data...)),
	}
	r.Logger.Debug("loaded design",
		"ports", len(d.Ports()),
		"cells", len(d.Cells()),
		"nets", len(d.Nets()))
	return src, nil
}
