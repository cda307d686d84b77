package session_test

import (
	"sync"
	"testing"

	"github.com/matrixvert/donorcli/session"
	"github.com/stretchr/testify/require"
)

func TestSessionSetAndSnapshot(t *testing.T) {
	s := session.New()
	require.False(t, s.IsAuthenticated())

	s.Set("AT1", "RT1", 3600)

	snap := s.Snapshot()
	require.Equal(t, "AT1", snap.AccessToken)
	require.Equal(t, "RT1", snap.RefreshToken)
	require.Equal(t, 3600, snap.ExpiresIn)
	require.True(t, snap.IsAuthenticated())
	require.True(t, s.IsAuthenticated())
}

func TestSessionClear(t *testing.T) {
	s := session.New()
	s.Set("AT1", "RT1", 3600)

	s.Clear()

	snap := s.Snapshot()
	require.Empty(t, snap.AccessToken)
	require.Empty(t, snap.RefreshToken)
	require.Zero(t, snap.ExpiresIn)
	require.False(t, s.IsAuthenticated())
}

// Readers must never observe a half-updated token pair.
func TestSessionAtomicUpdates(t *testing.T) {
	s := session.New()
	s.Set("AT1", "RT1", 3600)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				s.Set("AT1", "RT1", 3600)
			} else {
				s.Set("AT2", "RT2", 7200)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		snap := s.Snapshot()
		switch snap.AccessToken {
		case "AT1":
			require.Equal(t, "RT1", snap.RefreshToken)
			require.Equal(t, 3600, snap.ExpiresIn)
		case "AT2":
			require.Equal(t, "RT2", snap.RefreshToken)
			require.Equal(t, 7200, snap.ExpiresIn)
		default:
			t.Fatalf("unexpected access token %q", snap.AccessToken)
		}
	}

	close(stop)
	wg.Wait()
}
