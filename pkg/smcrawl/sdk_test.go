package smcrawl

import (
	"context"
	"strings"
	"testing"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

func TestClientExportUsesPublicFormats(t *testing.T) {
	c := New(WithMemoryStorage())
	ctx := context.Background()
	defer c.Close(ctx)

	store, err := c.gateway(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rec := types.NewPostRecord(types.PlatformTwitter, "https://x.com/home")
	rec.ID = "twitter:1"
	rec.Text = "hello"
	if err := store.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	res, err := c.Export(ctx, FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Data, `"ID","Platform"`) {
		t.Fatalf("csv header missing: %q", res.Data[:min(40, len(res.Data))])
	}
	if !strings.HasSuffix(res.Filename, ".csv") {
		t.Fatalf("filename = %q, want .csv", res.Filename)
	}

	if _, err := c.Export(ctx, Format("xml")); err == nil {
		t.Fatal("unknown format must fail")
	}
}
