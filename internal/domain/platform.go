package domain

import "fmt"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformIOS, PlatformAndroid:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ScreenShareResult is the outcome of the platform pre-capture step.
type ScreenShareResult int

const (
	ScreenShareStarted ScreenShareResult = iota
	ScreenShareCancelled
)

func (r ScreenShareResult) String() string {
	if r == ScreenShareStarted {
		return "started"
	}
	return "cancelled"
}
