package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/pixeltest"
)

type committedMap map[uint64]chainhash.Hash

func (m committedMap) BlockHash(_ context.Context, height uint64) (chainhash.Hash, error) {
	h, ok := m[height]
	if !ok {
		return chainhash.Hash{}, fmt.Errorf("no block at %d", height)
	}
	return h, nil
}

type loaderFixture struct {
	chain     *pixeltest.Chain
	committed committedMap
	loader    *Loader
}

func newLoaderFixture(t *testing.T, blocks int, maxDepth uint64) *loaderFixture {
	t.Helper()
	chain := pixeltest.NewChain()
	for i := 0; i < blocks; i++ {
		chain.AddBlock()
	}
	params := model.DefaultIndexingParams()
	params.MaxReorgDepth = maxDepth
	committed := committedMap{}
	return &loaderFixture{
		chain:     chain,
		committed: committed,
		loader:    NewLoader(chain, committed, model.Progress{}, params, zap.NewNop()),
	}
}

// drain accepts every available block.
func (f *loaderFixture) drain(t *testing.T) {
	t.Helper()
	for {
		b, err := f.loader.Next(context.Background())
		if errors.Is(err, ErrNoMoreBlocks) {
			return
		}
		require.NoError(t, err)
		f.committed[b.Height] = b.Hash
		f.loader.Accept(b.Progress())
	}
}

func TestLoader_NextInOrder(t *testing.T) {
	f := newLoaderFixture(t, 2, 10)
	ctx := context.Background()

	b1, err := f.loader.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), b1.Height)

	again, err := f.loader.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, b1.Hash, again.Hash)

	f.loader.Accept(b1.Progress())
	b2, err := f.loader.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), b2.Height)
	require.Equal(t, b1.Hash, b2.PrevHash)

	f.loader.Accept(b2.Progress())
	_, err = f.loader.Next(ctx)
	require.ErrorIs(t, err, ErrNoMoreBlocks)

	b3 := f.chain.AddBlock()
	got, err := f.loader.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, b3.Hash, got.Hash)
}

func TestLoader_ResumesFromProgress(t *testing.T) {
	chain := pixeltest.NewChain()
	b1 := chain.AddBlock()
	chain.AddBlock()

	loader := NewLoader(chain, committedMap{1: b1.Hash}, b1.Progress(), model.DefaultIndexingParams(), zap.NewNop())
	got, err := loader.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Height)
}

func TestLoader_Reorg(t *testing.T) {
	tests := []struct {
		name      string
		blocks    int
		forkAt    uint64
		newBlocks int
		maxDepth  uint64
		wantFork  uint64
		wantDepth uint64
		tooDeep   bool
	}{
		{name: "replacement branch", blocks: 4, forkAt: 2, newBlocks: 3, maxDepth: 10, wantFork: 2, wantDepth: 2},
		{name: "shorter branch", blocks: 4, forkAt: 1, newBlocks: 0, maxDepth: 10, wantFork: 1, wantDepth: 3},
		{name: "whole indexed range", blocks: 3, forkAt: 0, newBlocks: 4, maxDepth: 10, wantFork: 0, wantDepth: 3},
		{name: "too deep", blocks: 4, forkAt: 1, newBlocks: 4, maxDepth: 2, tooDeep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoaderFixture(t, tt.blocks, tt.maxDepth)
			f.drain(t)
			tip := f.loader.Progress()

			f.chain.Fork(tt.forkAt)
			for i := 0; i < tt.newBlocks; i++ {
				f.chain.AddBlock()
			}

			_, err := f.loader.Next(context.Background())
			if tt.tooDeep {
				var deep *ReorgTooDeepError
				require.True(t, errors.As(err, &deep), "got %v", err)
				require.Equal(t, tip.Height, deep.Height)
				require.Equal(t, tt.maxDepth, deep.MaxDepth)
				return
			}

			var reorg *ReorgError
			require.True(t, errors.As(err, &reorg), "got %v", err)
			require.Equal(t, tip, reorg.Tip)
			require.Equal(t, tt.wantFork, reorg.Fork.Height)
			require.Equal(t, tt.wantDepth, reorg.Depth())

			forkHash, err := f.chain.BlockHash(context.Background(), tt.wantFork)
			require.NoError(t, err)
			require.Equal(t, forkHash, reorg.Fork.Hash)

			f.loader.Reset(reorg.Fork)
			if tt.newBlocks == 0 {
				_, err = f.loader.Next(context.Background())
				require.ErrorIs(t, err, ErrNoMoreBlocks)
				return
			}
			b, err := f.loader.Next(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.wantFork+1, b.Height)
			require.Equal(t, reorg.Fork.Hash, b.PrevHash)
		})
	}
}

func TestLoader_SourceErrors(t *testing.T) {
	f := newLoaderFixture(t, 1, 10)
	f.chain.FailNext(1)

	_, err := f.loader.Next(context.Background())
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, "best_height", srcErr.Op)
	require.ErrorIs(t, err, pixeltest.ErrUnavailable)

	b, err := f.loader.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), b.Height)
}

func TestLoader_RejectsWrongHeight(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockSource(ctrl)
	hashes := NewMockCommittedHashes(ctrl)

	source.EXPECT().BestHeight(gomock.Any()).Return(uint64(5), nil)
	source.EXPECT().Block(gomock.Any(), uint64(1)).Return(&model.Block{Height: 2}, nil)

	loader := NewLoader(source, hashes, model.Progress{}, model.DefaultIndexingParams(), zap.NewNop())
	_, err := loader.Next(context.Background())
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, uint64(1), srcErr.Height)
}
