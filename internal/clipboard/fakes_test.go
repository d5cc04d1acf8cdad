package clipboard

import (
	"errors"
	"sync"
	"time"
)

type fakeClipboard struct {
	mu       sync.Mutex
	text     string
	image    *RawImage
	imagePNG []byte
	writeErr error
	onWrite  func()
	writes   int
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

func (f *fakeClipboard) ReadImage() (*RawImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image, nil
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.text = text
	f.image = nil
	return nil
}

func (f *fakeClipboard) WriteImage(png []byte) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.imagePNG = png
	return nil
}

func (f *fakeClipboard) set(text string, img *RawImage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.image = img
}

type fakeInjector struct {
	calls int
	err   error
}

func (f *fakeInjector) SendPasteCombo() error {
	f.calls++
	return f.err
}

var errFake = errors.New("fake failure")

// solidImage returns a w*h image filled with one color
func solidImage(w, h int, shade byte) *RawImage {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = shade
		pix[i+1] = shade
		pix[i+2] = 255 - shade
		pix[i+3] = 255
	}
	return &RawImage{Width: w, Height: h, Pix: pix}
}

func newTestCoordinator(clip Clipboard, inj Injector) (*Coordinator, *[]time.Duration) {
	var slept []time.Duration
	c := NewCoordinator(NewHistory(DefaultMaxHistory, nil), clip, inj, CoordinatorOptions{
		SettleDelay:    DefaultSettleDelay,
		PostPasteDelay: DefaultPostPasteDelay,
	}, nil)
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}
