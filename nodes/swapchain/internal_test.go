package swapchain

import (
	"testing"

	"github.com/gogpu/rendergraph/backend"
)

func TestChoosePresentModePriority(t *testing.T) {
	cases := []struct {
		supported []string
		want      string
	}{
		{[]string{"fifo", "mailbox", "immediate"}, "immediate"},
		{[]string{"fifo", "mailbox"}, "mailbox"},
		{[]string{"fifo"}, "fifo"},
		{nil, "fifo"},
	}
	for _, c := range cases {
		if got := choosePresentMode(c.supported); got != c.want {
			t.Errorf("choosePresentMode(%v) = %q, want %q", c.supported, got, c.want)
		}
	}
}

func TestChooseFormatFallsBackWhenUndefined(t *testing.T) {
	if got := chooseFormat([]string{formatUndefined}, ""); got != preferredFallback {
		t.Errorf("want fallback format %q, got %q", preferredFallback, got)
	}
}

func TestChooseFormatHonorsExplicitPreference(t *testing.T) {
	supported := []string{"bgra8_unorm", "rgba8_unorm"}
	if got := chooseFormat(supported, "rgba8_unorm"); got != "rgba8_unorm" {
		t.Errorf("want preferred format honored, got %q", got)
	}
}

func TestChooseFormatIgnoresUnsupportedPreference(t *testing.T) {
	supported := []string{"bgra8_unorm"}
	if got := chooseFormat(supported, "rgba8_unorm"); got != "bgra8_unorm" {
		t.Errorf("want fallback to first supported format, got %q", got)
	}
}

func TestChooseExtentUsesWindowSizeWhenUndefined(t *testing.T) {
	window := backend.Extent2D{Width: 800, Height: 600}
	current := backend.Extent2D{Width: backend.UndefinedExtent, Height: backend.UndefinedExtent}
	if got := chooseExtent(current, window); got != window {
		t.Errorf("want window extent %v, got %v", window, got)
	}
}

func TestChooseExtentPrefersSurfaceCurrentExtent(t *testing.T) {
	current := backend.Extent2D{Width: 1920, Height: 1080}
	window := backend.Extent2D{Width: 800, Height: 600}
	if got := chooseExtent(current, window); got != current {
		t.Errorf("want surface current extent %v, got %v", current, got)
	}
}

func TestChooseImageCountClampsToMax(t *testing.T) {
	if got := chooseImageCount(2, 2); got != 2 {
		t.Errorf("want clamped image count 2, got %d", got)
	}
	if got := chooseImageCount(2, 0); got != 3 {
		t.Errorf("want unbounded min+1 = 3, got %d", got)
	}
}
