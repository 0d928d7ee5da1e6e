package main

import (
	"errors"
	"testing"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

func TestPickAdapter(t *testing.T) {
	t.Cleanup(func() { platformName = "" })

	platformName = ""
	ad, err := pickAdapter("https://x.com/home")
	if err != nil {
		t.Fatal(err)
	}
	if ad.Platform() != types.PlatformTwitter {
		t.Fatalf("detected %v, want twitter", ad.Platform())
	}

	// The flag wins over the URL host and is case-insensitive.
	platformName = "TikTok"
	ad, err = pickAdapter("https://x.com/home")
	if err != nil {
		t.Fatal(err)
	}
	if ad.Platform() != types.PlatformTikTok {
		t.Fatalf("flag override picked %v, want tiktok", ad.Platform())
	}

	platformName = "myspace"
	if _, err = pickAdapter("https://x.com/home"); !errors.Is(err, types.ErrNoPlatform) {
		t.Fatalf("unknown platform = %v, want ErrNoPlatform", err)
	}

	platformName = ""
	if _, err = pickAdapter("https://example.com/feed"); !errors.Is(err, types.ErrNoPlatform) {
		t.Fatalf("undetectable host = %v, want ErrNoPlatform", err)
	}
}
