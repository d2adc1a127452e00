//go:build !darwin && !linux

package stickiesdir

import "time"

func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
