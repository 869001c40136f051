package export

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"lyricsync/internal/lyrics"
)

func sampleDocument() Document {
	return Document{
		Metadata: lyrics.Metadata{Title: "Song", Artist: "Artist", Duration: 30},
		Lines: []lyrics.MergedLine{
			{Text: "line one", Minutes: "00", Seconds: "12", Milliseconds: "345", Romaji: "rain wan", Translation: "first", End: 14.5},
			{Text: "", Minutes: "00", Seconds: "15", Milliseconds: "000"},
			{Text: "line, two", Minutes: "00", Seconds: "20", Milliseconds: "000", Translation: "second", ImprovedTranslation: "Second"},
		},
	}
}

func TestWriteCSVAndReadBack(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "CSV", sampleDocument(), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	if firstLine != "text,minutes,seconds,milliseconds,romaji,translation,improved_translation" {
		t.Fatalf("header = %q", firstLine)
	}
	if !strings.Contains(buf.String(), `"line, two"`) {
		t.Fatalf("expected quoted comma field, got %q", buf.String())
	}
	lines, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(lines))
	}
	if lines[1].Text != "" || lines[2].ImprovedTranslation != "Second" || math.Abs(lines[0].Start-12.345) > 1e-9 {
		t.Fatalf("rows = %+v", lines)
	}
}

func TestReadCSVSkipsByteOrderMark(t *testing.T) {
	input := "\ufefftext,minutes,seconds,milliseconds\n君の名は,00,12,340\n"
	lines, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "君の名は" || lines[0].Milliseconds != "340" {
		t.Fatalf("rows = %+v", lines)
	}
}

func TestReadCSVRequiresTextColumn(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteJSONAndReadDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", sampleDocument(), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"improved_translation": "Second"`) {
		t.Fatalf("json = %s", buf.String())
	}
	doc, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Metadata.Title != "Song" || len(doc.Lines) != 3 {
		t.Fatalf("doc = %+v", doc)
	}

	bare, err := ReadDocument(strings.NewReader(`[{"text":"a","minutes":"00","seconds":"01","milliseconds":"000"}]`))
	if err != nil {
		t.Fatalf("ReadDocument array: %v", err)
	}
	if len(bare.Lines) != 1 || bare.Lines[0].Text != "a" {
		t.Fatalf("bare = %+v", bare)
	}
}

func TestWriteLRC(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, ".lrc", sampleDocument(), Options{Version: "v0.1.0"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[00:12.34]line one\train wan\tfirst\n") || !strings.Contains(out, "[tool:lyricsync v0.1.0]") {
		t.Fatalf("lrc = %q", out)
	}
	if strings.Contains(out, "[00:15.00]") {
		t.Fatalf("blank row should be skipped: %q", out)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xlsx", sampleDocument(), Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer file.Close()
	rows, err := file.GetRows(lyricsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "text" || rows[3][0] != "line, two" || rows[3][6] != "Second" {
		t.Fatalf("rows = %v", rows)
	}
	title, err := file.GetCellValue(metadataSheet, "B1")
	if err != nil || title != "Song" {
		t.Fatalf("metadata title = %q, %v", title, err)
	}
}

func TestBuildSubtitlesTiming(t *testing.T) {
	subs := BuildSubtitles(sampleDocument().Lines)
	if len(subs.Items) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(subs.Items))
	}
	first := subs.Items[0]
	if first.StartAt != 12345*time.Millisecond || first.EndAt != 14500*time.Millisecond {
		t.Fatalf("first cue = %v -> %v", first.StartAt, first.EndAt)
	}
	if len(first.Lines) != 3 || first.Lines[1].Items[0].Text != "rain wan" {
		t.Fatalf("first cue lines = %+v", first.Lines)
	}
	last := subs.Items[1]
	if last.StartAt != 20*time.Second || last.EndAt != 23*time.Second {
		t.Fatalf("last cue = %v -> %v", last.StartAt, last.EndAt)
	}
	if len(last.Lines) != 2 || last.Lines[1].Items[0].Text != "Second" {
		t.Fatalf("last cue lines = %+v", last.Lines)
	}
}

func TestBuildSubtitlesEndsAtNextStart(t *testing.T) {
	lines := []lyrics.MergedLine{
		{Text: "a", Minutes: "00", Seconds: "01", Milliseconds: "000"},
		{Text: "b", Minutes: "00", Seconds: "02", Milliseconds: "500"},
	}
	subs := BuildSubtitles(lines)
	if subs.Items[0].EndAt != 2500*time.Millisecond {
		t.Fatalf("end = %v", subs.Items[0].EndAt)
	}
}

func TestWriteSubtitleFormats(t *testing.T) {
	var srt, vtt bytes.Buffer
	if err := Write(&srt, "srt", sampleDocument(), Options{}); err != nil {
		t.Fatalf("srt: %v", err)
	}
	if !strings.Contains(srt.String(), "00:00:12,345 --> 00:00:14,500") {
		t.Fatalf("srt = %q", srt.String())
	}
	if err := Write(&vtt, "vtt", sampleDocument(), Options{}); err != nil {
		t.Fatalf("vtt: %v", err)
	}
	if !strings.Contains(vtt.String(), "WEBVTT") || !strings.Contains(vtt.String(), "00:00:12.345 --> 00:00:14.500") {
		t.Fatalf("vtt = %q", vtt.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "docx", sampleDocument(), Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("XLSX"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("ContentType = %q", got)
	}
	if Extension("LRC") != ".lrc" {
		t.Fatalf("Extension = %q", Extension("LRC"))
	}
}
