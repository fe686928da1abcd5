//go:build !ios || !cgo

package session

import "time"

type unsupportedSession struct{}

func nativeBackend() Backend {
	return unsupportedSession{}
}

func (unsupportedSession) SetCategory(Category) error { return ErrUnsupported }

func (unsupportedSession) SetCategoryWithOptions(Category, CategoryOptions) error {
	return ErrUnsupported
}

func (unsupportedSession) SetCategoryModeOptions(Category, Mode, CategoryOptions) error {
	return ErrUnsupported
}

func (unsupportedSession) SetMode(Mode) error { return ErrUnsupported }

func (unsupportedSession) SetActive(bool, SetActiveOptions) error { return ErrUnsupported }

func (unsupportedSession) Category() (Category, error) { return 0, ErrUnsupported }

func (unsupportedSession) CategoryOptions() (CategoryOptions, error) { return 0, ErrUnsupported }

func (unsupportedSession) Mode() (Mode, error) { return 0, ErrUnsupported }

func (unsupportedSession) OtherAudioPlaying() (bool, error) { return false, ErrUnsupported }

func (unsupportedSession) SetPreferredSampleRate(float64) error { return ErrUnsupported }

func (unsupportedSession) SetPreferredIOBufferDuration(time.Duration) error {
	return ErrUnsupported
}

func (unsupportedSession) Hardware() (Hardware, error) { return Hardware{}, ErrUnsupported }

func (unsupportedSession) CurrentRoute() (Route, error) { return Route{}, ErrUnsupported }
