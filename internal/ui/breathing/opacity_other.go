//go:build !windows

package breathing

import "fyne.io/fyne/v2"

// applyNativeOpacity is only supported on Windows; elsewhere the background alpha is used alone.
func applyNativeOpacity(fyne.Window, float64) {}
