// Package sink appends run artifacts to CSV files under the data directory:
// submitted applications, failed attempts, and the questions no answer rule
// covered. Files are opened per write so a crash never loses earlier rows.
package sink

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	outputFile     = "output.csv"
	failedFile     = "failed.csv"
	unpreparedFile = "unprepared_questions.csv"
)

// Outcome is one terminal application attempt, success or failure.
type Outcome struct {
	Company         string
	Title           string
	Link            string
	PostingLocation string
	SearchLocation  string
}

type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// WriteApplied records a confirmed submission.
func (w *Writer) WriteApplied(o Outcome) {
	w.append(outputFile, o)
}

// WriteFailed records an attempt that started but did not submit.
func (w *Writer) WriteFailed(o Outcome) {
	w.append(failedFile, o)
}

func (w *Writer) append(name string, o Outcome) {
	row := []string{o.Company, o.Title, o.Link, o.PostingLocation, o.SearchLocation, w.now().Format(time.RFC3339)}
	w.appendRow(name, row)
}

// RecordUnprepared logs a question the rule tables had no coverage for, so
// the next config edit can close the gap. Rows that would break the CSV are
// dropped with a warning rather than corrupting the file.
func (w *Writer) RecordUnprepared(kind, question string) {
	question = strings.TrimSpace(question)
	if strings.ContainsAny(question, "\x00") {
		log.Printf("[sink] dropping unloggable question text")
		return
	}
	w.appendRow(unpreparedFile, []string{kind, question})
}

// appendRow opens, writes and closes in one shot. Log sinks never fail the
// run; a full disk loses the row, not the application.
func (w *Writer) appendRow(name string, row []string) {
	path := filepath.Join(w.dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[sink] open %s: %v", path, err)
		return
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(row); err != nil {
		log.Printf("[sink] write %s: %v", path, err)
		return
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("[sink] flush %s: %v", path, err)
	}
}
