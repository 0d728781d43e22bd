package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func TestCachedExtractor_ExtractsOncePerContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "same bytes")
	b := writeFile(t, dir, "copy/a-again.pdf", "same bytes")
	c := writeFile(t, dir, "c.pdf", "other bytes")
	runner := &stubRunner{stdout: "SCADA\f"}
	cached := NewCachedExtractor(NewExtractor(Config{}, nil, WithRunner(runner)), 0, nil)
	ctx := context.Background()

	first, err := cached.Extract(ctx, a)
	require.NoError(t, err)
	second, err := cached.Extract(ctx, b)
	require.NoError(t, err)
	_, err = cached.Extract(ctx, c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, runner.calls, 2)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedExtractor_ReturnsCopies(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "a.txt", "original")
	cached := NewCachedExtractor(NewExtractor(Config{}, nil), 0, nil)

	pages, err := cached.Extract(context.Background(), doc)
	require.NoError(t, err)
	pages[1] = "mutated"

	again, err := cached.Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, entity.Pages{1: "original"}, again)
}

func TestContentHash(t *testing.T) {
	p := writeFile(t, t.TempDir(), "x.txt", "abc")
	sum, err := ContentHash(p)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}
