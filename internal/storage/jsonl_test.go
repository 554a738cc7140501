package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"depositCalc/internal/model"
)

func TestJsonlStorageAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "records.jsonl")
	sink := NewJsonlStorage(path)

	record := model.AuditRecord{
		ChainID:     56,
		BlockNumber: 12345,
		PairAddress: "0x1111111111111111111111111111111111111111",
		AnchorToken: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Params: model.DepositParams{
			Amount0:       "1000",
			Amount1:       "500",
			MinAmount0Out: "990",
			MinAmount1Out: "495",
			Ratio:         "200",
			Policy:        "legacy-decimal-count",
		},
		EncodedHex: "0xdeadbeef",
	}

	if err := sink.PutAuditRecord(context.Background(), record); err != nil {
		t.Fatalf("put record: %v", err)
	}
	if err := sink.PutAuditRecord(context.Background(), record); err != nil {
		t.Fatalf("put second record: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var got model.AuditRecord
		if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		if got.ChainID != record.ChainID || got.Params.Amount1 != "500" {
			t.Fatalf("record mismatch: %+v", got)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if lines != 2 {
		t.Fatalf("line count mismatch: %d", lines)
	}
}
