package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainRunsInOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	q.Post(func() { got = append(got, 1) })
	q.Post(func() {
		got = append(got, 2)
		q.Post(func() { got = append(got, 3) })
	})

	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 0, q.Drain())
}

func TestQueueRun(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- q.Run(ctx) }()

	ran := make(chan struct{})
	go q.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task never ran")
	}
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
}

func TestLoopFunc(t *testing.T) {
	var calls int
	var l Loop = LoopFunc(func(fn func()) {
		calls++
		fn()
	})
	ran := false
	l.Post(func() { ran = true })
	assert.True(t, ran)
	assert.Equal(t, 1, calls)
}
