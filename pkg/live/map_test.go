package live

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int)
	out := Map(ctx, in, strconv.Itoa)

	go func() {
		in <- 1
		in <- 2
		close(in)
	}()

	assert.Equal(t, "1", recv(t, out))
	assert.Equal(t, "2", recv(t, out))
	closed(t, out)
}

func TestMap_CancelCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := Map(ctx, make(chan int), strconv.Itoa)
	cancel()
	closed(t, out)
}

func TestFirst(t *testing.T) {
	ctx := context.Background()

	in := make(chan int, 1)
	in <- 42
	v, ok := First(ctx, in)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	close(in)
	_, ok = First(ctx, in)
	assert.False(t, ok)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, ok = First(cctx, make(chan int))
	assert.False(t, ok)
}
