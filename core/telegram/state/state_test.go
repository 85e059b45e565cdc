package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/trustbot/core/telegram/teletest"
)

func TestKeyOf(t *testing.T) {
	k, ok := KeyOf(teletest.Message(1, &tele.User{ID: 5}, "hi"))
	require.True(t, ok)
	require.Equal(t, Key{ChatID: 5, UserID: 5}, k)
	require.Equal(t, "5/5", k.String())

	_, ok = KeyOf(teletest.New(tele.Update{ID: 2}))
	require.False(t, ok)
}

func TestStoreExpires(t *testing.T) {
	s := NewStore[string](Options{TTL: 50 * time.Millisecond, Capacity: 4})
	k := Key{ChatID: 1, UserID: 1}
	s.Put(k, "await_forward")

	v, ok := s.Get(k)
	require.True(t, ok)
	require.Equal(t, "await_forward", v)

	require.Eventually(t, func() bool {
		_, ok := s.Get(k)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestStoreEvictsLeastRecent(t *testing.T) {
	s := NewStore[int](Options{Capacity: 2})
	for i := range int64(3) {
		s.Put(Key{ChatID: i, UserID: i}, int(i))
	}
	require.Equal(t, 2, s.Len())
	_, ok := s.Get(Key{})
	require.False(t, ok)

	s.Delete(Key{ChatID: 2, UserID: 2})
	require.Equal(t, 1, s.Len())
}

func TestSerializeRunsOneAtATime(t *testing.T) {
	l := NewLocker()
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	h := Serialize(l)(func(tele.Context) error {
		mu.Lock()
		active++
		maxSeen = max(maxSeen, active)
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	user := &tele.User{ID: 9}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h(teletest.Message(i, user, "x"))
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxSeen)
	require.Zero(t, l.size())
}
