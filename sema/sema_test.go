package sema

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"binary", Binary(), nil},
		{"weighted", Config{Kind: KindWeighted, Initial: 1, Max: 1}, nil},
		{"empty kind is channel", Config{Initial: 0, Max: 2}, nil},
		{"zero max", Config{Kind: KindChannel, Initial: 0, Max: 0}, ErrInvalid},
		{"negative initial", Config{Kind: KindChannel, Initial: -1, Max: 1}, ErrInvalid},
		{"initial above max", Config{Kind: KindChannel, Initial: 3, Max: 1}, ErrInvalid},
		{"unknown kind", Config{Kind: "futex", Initial: 1, Max: 1}, ErrUnknownKind},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.cfg)
			if tc.want != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.want), "got %v", err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestChanValue(t *testing.T) {
	s := NewChan(1, 1)
	v, ok := Value(s)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, s.Acquire(context.Background()))
	v, _ = Value(s)
	assert.Equal(t, 0, v)

	s.Release()
	v, _ = Value(s)
	assert.Equal(t, 1, v)
}

func TestChanStartsPartiallyHeld(t *testing.T) {
	s := NewChan(1, 3)
	v, ok := Value(s)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestChanAcquireHonoursContext(t *testing.T) {
	s := NewChan(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	free := NewChan(1, 1)
	assert.ErrorIs(t, free.Acquire(cancelled), context.Canceled)
	v, _ := Value(free)
	assert.Equal(t, 1, v, "a cancelled acquire must not take a unit")
}

func TestWeightedIsNotIntrospectable(t *testing.T) {
	s, err := New(Config{Kind: KindWeighted, Initial: 1, Max: 1})
	require.NoError(t, err)
	_, ok := Value(s)
	assert.False(t, ok)

	require.NoError(t, s.Acquire(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Acquire(ctx), "second acquire of a binary semaphore should block")
	s.Release()
}

func TestNoop(t *testing.T) {
	var s Semaphore = Noop{}
	require.NoError(t, s.Acquire(context.Background()))
	require.NoError(t, s.Acquire(context.Background()))
	s.Release()
	_, ok := Value(s)
	assert.False(t, ok)
}

func TestMutualExclusion(t *testing.T) {
	for _, kind := range []string{KindChannel, KindWeighted} {
		t.Run(kind, func(t *testing.T) {
			s, err := New(Config{Kind: kind, Initial: 1, Max: 1})
			require.NoError(t, err)

			var wg sync.WaitGroup
			count := 0
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						if !assert.NoError(t, s.Acquire(context.Background())) {
							return
						}
						count++
						s.Release()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 3200, count)
		})
	}
}
