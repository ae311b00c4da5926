package ring

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynced_ConcurrentInsertAndResolve(t *testing.T) {
	s, err := NewSynced(1<<32, WithInitialCapacity(1))
	require.NoError(t, err)
	require.NoError(t, s.Insert(0))

	const writers, perWriter = 8, 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= perWriter; i++ {
				if err := s.Insert(uint64(w*perWriter + i)); err != nil {
					t.Errorf("Insert: %v", err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if _, err := s.Resolve(uint64(r*1000 + i)); err != nil {
					t.Errorf("Resolve: %v", err)
					return
				}
			}
		}(r)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter+1, s.Len())
	owner, err := s.Resolve(17)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), owner)
}

func TestSynced_Update(t *testing.T) {
	s, err := NewSynced(100)
	require.NoError(t, err)

	err = s.Update(func(r *Ring) error {
		for _, h := range []uint64{10, 20, 30} {
			if err := r.Insert(h); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(20))

	succ, err := s.Successors(25, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{30, 10}, succ)

	err = s.Update(func(r *Ring) error { return r.Insert(110) })
	assert.True(t, errors.Is(err, ErrNodePresent))

	require.NoError(t, s.Delete(20))
	assert.Equal(t, []uint64{10, 30}, hashes(s.Nodes()))

	s.Destroy()
	assert.ErrorIs(t, s.Insert(1), ErrDestroyed)
}

func TestNewSynced_InvalidSize(t *testing.T) {
	_, err := NewSynced(0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
