package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"lcms-backend/internal/samples"
)

func exportFixtures() []samples.Sample {
	mass := 410.1828
	rt := 1.23
	code := samples.ErrorCodeUnreadableFile
	now := time.Now().UTC()
	return []samples.Sample{
		{
			ID:        "id-1",
			SampleID:  "LC-001",
			BatchID:   "batch-7",
			Status:    samples.StatusCompleted,
			CreatedAt: now,
			Result: &samples.Result{
				Formula:          "C21H23N5O4",
				MonoisotopicMass: 409.1750,
				MHMass:           410.1828,
				MNaMass:          432.1647,
				MHMinusMass:      408.1677,
				ProductDetected:  true,
				DetectedMass:     &mass,
				RetentionTime:    &rt,
				Purity:           97.52,
			},
		},
		{
			ID:        "id-2",
			SampleID:  "LC-002",
			BatchID:   "batch-7",
			Status:    samples.StatusFailed,
			ErrorCode: &code,
			CreatedAt: now,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exportFixtures()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}
	if records[0][0] != "id" || records[0][len(records[0])-1] != "error_code" {
		t.Errorf("header = %v", records[0])
	}

	completed := records[1]
	if completed[1] != "LC-001" || completed[4] != "C21H23N5O4" {
		t.Errorf("completed row = %v", completed)
	}
	if completed[5] != "409.1750" || completed[6] != "410.1828" {
		t.Errorf("masses formatted wrong: %v", completed[5:9])
	}
	if completed[9] != "true" || completed[12] != "97.5" {
		t.Errorf("detection/purity cells = %q, %q", completed[9], completed[12])
	}

	failed := records[2]
	if failed[4] != "" || failed[13] != samples.ErrorCodeUnreadableFile {
		t.Errorf("failed row = %v", failed)
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, exportFixtures()); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []samples.Sample
	for scanner.Scan() {
		var s samples.Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("line %d: %v", len(lines)+1, err)
		}
		lines = append(lines, s)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Result == nil || lines[0].Result.Formula != "C21H23N5O4" {
		t.Errorf("line 1 result = %+v", lines[0].Result)
	}
	if lines[1].ErrorCode == nil || *lines[1].ErrorCode != samples.ErrorCodeUnreadableFile {
		t.Errorf("line 2 error code = %v", lines[1].ErrorCode)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, exportFixtures()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "C21H23N5O4" {
		t.Errorf("formula cell = %q", rows[1][4])
	}
	// numeric cells come back as numbers, not the 4-decimal strings
	if !strings.HasPrefix(rows[1][5], "409.175") {
		t.Errorf("monoisotopic mass cell = %q", rows[1][5])
	}
}

func TestWriteEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("empty CSV has %d lines, want header only", got)
	}

	buf.Reset()
	if err := WriteJSONL(&buf, nil); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty JSONL wrote %d bytes", buf.Len())
	}
}
