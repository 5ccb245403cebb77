package column

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexSerializesAccess(t *testing.T) {
	var m Mutex
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
}
