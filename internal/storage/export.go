package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// ExportResult is a ready-to-write export payload.
type ExportResult struct {
	Data     string
	Filename string
	MIMEType string
}

// Format names a supported export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// csvHeader is the fixed tabular schema. Metric columns use the Twitter-era
// vocabulary; other platforms map onto them (reposts -> Retweets,
// comments -> Replies) and absent counts export as 0.
var csvHeader = []string{
	"ID", "Platform", "Author Name", "Author Handle", "Text",
	"Timestamp", "URL", "Crawled At", "Likes", "Retweets", "Replies", "Views",
}

// Export renders records in the requested format and derives the
// conventional filename: {date}_{group}_{platform-if-singular}_{N}posts.{ext}.
func Export(records []*types.PostRecord, format Format) (*ExportResult, error) {
	switch format {
	case FormatJSON:
		data, err := exportJSON(records)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Data:     data,
			Filename: exportFilename(records, "json"),
			MIMEType: "application/json",
		}, nil
	case FormatCSV:
		return &ExportResult{
			Data:     exportCSV(records),
			Filename: exportFilename(records, "csv"),
			MIMEType: "text/csv",
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFormat, format)
	}
}

func exportJSON(records []*types.PostRecord) (string, error) {
	if records == nil {
		records = []*types.PostRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode JSON export: %w", err)
	}
	return string(data), nil
}

// exportCSV writes the fixed header plus one row per record. The output
// contract: every field quoted, embedded quotes doubled, embedded newlines
// collapsed to spaces. encoding/csv quotes conditionally and preserves
// newlines, so rows are written by hand.
func exportCSV(records []*types.PostRecord) string {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, rec := range records {
		writeCSVRow(&b, []string{
			rec.ID,
			string(rec.Platform),
			rec.Author.Name,
			rec.Author.Handle,
			rec.Text,
			rec.Timestamp,
			rec.URL,
			rec.CrawledAt,
			strconv.FormatInt(rec.Metric(types.MetricLikes).Int(), 10),
			strconv.FormatInt(rec.Metric(types.MetricReposts).Int(), 10),
			strconv.FormatInt(rec.Metric(types.MetricComments).Int(), 10),
			strconv.FormatInt(rec.Metric(types.MetricViews).Int(), 10),
		})
	}
	return b.String()
}

var newlineRun = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(newlineRun.Replace(f), `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// exportFilename derives {ISO-date}_{group}_{platform}_{N}posts.{ext}. The
// group and platform parts are dropped when the batch has no single value
// for them.
func exportFilename(records []*types.PostRecord, ext string) string {
	parts := []string{time.Now().UTC().Format("2006-01-02")}

	if group := singularGroup(records); group != "" {
		parts = append(parts, sanitizeFilePart(group))
	}
	if platform := singularPlatform(records); platform != "" {
		parts = append(parts, platform)
	}
	parts = append(parts, fmt.Sprintf("%dposts", len(records)))
	return strings.Join(parts, "_") + "." + ext
}

func singularPlatform(records []*types.PostRecord) string {
	var p types.Platform
	for _, rec := range records {
		if p == "" {
			p = rec.Platform
		} else if rec.Platform != p {
			return ""
		}
	}
	return string(p)
}

func singularGroup(records []*types.PostRecord) string {
	var g string
	for _, rec := range records {
		if rec.GroupLabel == "" || rec.GroupLabel == types.GroupUnknown {
			continue
		}
		if g == "" {
			g = rec.GroupLabel
		} else if rec.GroupLabel != g {
			return ""
		}
	}
	return g
}

// sanitizeFilePart strips characters that are unsafe in filenames.
func sanitizeFilePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ', r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}
