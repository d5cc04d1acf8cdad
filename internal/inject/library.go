package inject

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// LibraryStrategy sends the combo through the keybd_event input library.
// The key bonding is created once and reused.
type LibraryStrategy struct {
	mu    sync.Mutex
	kb    *keybd_event.KeyBonding
	sleep func(time.Duration)
}

func NewLibraryStrategy() *LibraryStrategy {
	return &LibraryStrategy{sleep: time.Sleep}
}

func (s *LibraryStrategy) Name() string { return TierLibrary }

func (s *LibraryStrategy) Attempt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kb == nil {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			return fmt.Errorf("create key bonding: %w", err)
		}
		// the library registers its own uinput device on linux
		if runtime.GOOS == "linux" {
			s.sleep(2 * time.Second)
		}
		s.kb = &kb
	}

	s.kb.Clear()
	s.kb.SetKeys(keybd_event.VK_V)
	s.kb.HasCTRL(true)
	if err := s.kb.Launching(); err != nil {
		return fmt.Errorf("send ctrl+v: %w", err)
	}
	return nil
}
