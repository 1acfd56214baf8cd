package logger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSafeCSVWriterConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "history.csv")
	logger := zap.NewNop()

	writer, err := NewSafeCSVWriter(testFile, HistoryHeader, 50*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("Failed to create safe CSV writer: %v", err)
	}

	var wg sync.WaitGroup
	numGoroutines := 5
	recordsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				record := []string{
					time.Now().Format(time.RFC3339),
					"swap",
					"confirmed",
					"",
					fmt.Sprintf("sig_%d_%d", id, j),
					fmt.Sprintf("wallet_%d", id),
					"false",
					"1.25",
					"",
				}
				if err := writer.WriteRecord(record); err != nil {
					t.Errorf("Failed to write record: %v", err)
				}
			}
		}(i)
	}

	// Concurrent flushes
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		for i := 0; i < 10; i++ {
			if err := writer.Flush(); err != nil {
				logger.Error("CSV flush failed", zap.Error(err))
			}
			time.Sleep(20 * time.Millisecond)
		}
	}()

	wg.Wait()

	select {
	case <-flushDone:
	case <-time.After(2 * time.Second):
		t.Error("CSV flush goroutine timeout")
	}

	records, _ := writer.GetStats()
	expectedRecords := uint64(numGoroutines * recordsPerGoroutine)
	if records != expectedRecords {
		t.Errorf("Expected %d records (excluding header), got %d", expectedRecords, records)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	f, err := os.Open(testFile)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != int(expectedRecords)+1 {
		t.Errorf("Expected %d rows with header, got %d", expectedRecords+1, len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][1] != "operation" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
}

func TestSafeCSVWriterAppendSkipsHeader(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "history.csv")

	for i := 0; i < 2; i++ {
		writer, err := NewSafeCSVWriter(testFile, HistoryHeader, time.Second, zap.NewNop())
		if err != nil {
			t.Fatalf("Failed to create writer: %v", err)
		}
		if err := writer.WriteRecord([]string{"t", "mint", "confirmed", "", "sig", "w", "false", "0", ""}); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Failed to close: %v", err)
		}
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected header and 2 records, got %d rows", len(rows))
	}
}
