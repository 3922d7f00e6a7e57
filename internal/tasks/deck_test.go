package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashmemo/internal/exporters"
	"github.com/mrlokans/flashmemo/internal/importers"
)

type fakeExporter struct {
	dir        string
	all        bool
	categoryID uint
	err        error
}

func (f *fakeExporter) ExportAll(ctx context.Context) (exporters.ExportResult, error) {
	f.all = true
	return exporters.ExportResult{CategoriesProcessed: 2, OutputDir: f.dir}, f.err
}

func (f *fakeExporter) ExportCategory(ctx context.Context, id uint) (exporters.ExportResult, error) {
	f.categoryID = id
	return exporters.ExportResult{CategoriesProcessed: 1, OutputDir: f.dir}, f.err
}

func TestExportDeckProcessor(t *testing.T) {
	fake := &fakeExporter{}
	factory := func(dir string) DeckExporter {
		fake.dir = dir
		return fake
	}

	t.Run("exports everything into a timestamped folder", func(t *testing.T) {
		process := ExportDeckProcessor(factory, "/exports")
		require.NoError(t, process(context.Background(), ExportDeckTask{}))
		assert.True(t, fake.all)
		assert.True(t, strings.HasPrefix(fake.dir, filepath.Join("/exports", "")))
	})

	t.Run("exports one category to an explicit folder", func(t *testing.T) {
		process := ExportDeckProcessor(factory, "/exports")
		require.NoError(t, process(context.Background(), ExportDeckTask{CategoryID: 9, OutputDir: "/tmp/tech"}))
		assert.Equal(t, uint(9), fake.categoryID)
		assert.Equal(t, "/tmp/tech", fake.dir)
	})

	t.Run("propagates failures", func(t *testing.T) {
		fake.err = errors.New("disk full")
		defer func() { fake.err = nil }()
		process := ExportDeckProcessor(factory, "/exports")
		assert.Error(t, process(context.Background(), ExportDeckTask{}))
	})

	t.Run("requires an exporter", func(t *testing.T) {
		assert.Error(t, ExportDeckProcessor(nil, "")(context.Background(), ExportDeckTask{}))
	})
}

type fakeImporter struct {
	converter importers.Converter
	parentID  *uint
}

func (f *fakeImporter) Import(ctx context.Context, converter importers.Converter, parentID *uint) (importers.ImportResult, error) {
	f.converter = converter
	f.parentID = parentID
	return importers.ImportResult{CategoriesImported: 1}, nil
}

func TestImportDeckProcessor(t *testing.T) {
	fake := &fakeImporter{}
	process := ImportDeckProcessor(fake)

	parent := uint(4)
	require.NoError(t, process(context.Background(), ImportDeckTask{Dir: "/decks", ParentID: &parent}))

	converter, ok := fake.converter.(*importers.MarkdownConverter)
	require.True(t, ok)
	assert.Equal(t, "/decks", converter.Dir)
	assert.Equal(t, &parent, fake.parentID)

	assert.Error(t, process(context.Background(), ImportDeckTask{}), "dir is required")
	assert.Error(t, ImportDeckProcessor(nil)(context.Background(), ImportDeckTask{Dir: "/decks"}))
}
