// Package impexp reads and writes fund documents and CSV record sheets.
package impexp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bobmcallan/chitlens/internal/models"
)

// Document is one fund with its monthly records, as exchanged in JSON.
type Document struct {
	Fund    models.FundConfig      `json:"fund"`
	Records []models.MonthlyRecord `json:"records"`
}

// DecodeDocument parses a JSON fund document. Unknown fields are rejected and
// the fund's end month is resolved from its term when missing.
func DecodeDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse fund document: %w", err)
	}
	if doc.Fund.StartMonth.IsZero() {
		return nil, fmt.Errorf("fund document: start_month is required")
	}
	for i, rec := range doc.Records {
		if rec.Month.IsZero() {
			return nil, fmt.Errorf("fund document: record %d has no month", i+1)
		}
	}
	doc.Fund.ResolveEndMonth()
	if doc.Records == nil {
		doc.Records = []models.MonthlyRecord{}
	}
	return &doc, nil
}

// EncodeDocument writes doc as indented JSON.
func EncodeDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode fund document: %w", err)
	}
	return nil
}

// ReadDocumentFile opens path and decodes it as a fund document.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
