package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caselight/retrieval"
	"github.com/caselight/retrieval/chunk"
	"github.com/caselight/retrieval/ingest"
)

// sampleDocuments is a small built-in corpus for local development. Each
// entry is indexed as its own document under the "case-sample" case.
var sampleDocuments = []ingest.Document{
	{
		DocumentID: "service-agreement",
		CaseID:     "case-sample",
		Template:   chunk.TemplateContract,
		Text: `ARTICLE I. SERVICES

The Contractor shall provide software maintenance services to the Client
as described in Exhibit A. Services shall be performed in a professional
and workmanlike manner consistent with industry standards.

ARTICLE II. COMPENSATION

The Client shall pay the Contractor a monthly fee of ten thousand dollars,
due within thirty days of invoice. Late payments accrue interest at one
percent per month.

ARTICLE III. TERMINATION

Either party may terminate this agreement upon sixty days written notice.
Termination for material breach is effective immediately upon notice if
the breach remains uncured after fifteen days.

ARTICLE IV. INDEMNIFICATION

The Contractor shall indemnify and hold harmless the Client against all
claims arising from the Contractor's negligence or willful misconduct,
excluding claims caused by the Client's own modifications to delivered
software.`,
	},
	{
		DocumentID: "motion-to-dismiss",
		CaseID:     "case-sample",
		Template:   chunk.TemplateBrief,
		Text: `I. INTRODUCTION

Defendant moves to dismiss the complaint for failure to state a claim
upon which relief can be granted. The complaint alleges breach of
contract but identifies no contractual provision that was breached.

II. LEGAL STANDARD

To survive a motion to dismiss, a complaint must contain sufficient
factual matter, accepted as true, to state a claim to relief that is
plausible on its face. Threadbare recitals of the elements of a cause
of action do not suffice.

III. ARGUMENT

Plaintiff's breach of contract claim fails because the complaint does
not identify which provision of the service agreement was allegedly
breached, nor does it allege facts showing damages resulting from any
breach. The implied covenant claim is duplicative and must be dismissed
for the same reasons.

IV. CONCLUSION

For the foregoing reasons, the Court should dismiss the complaint with
prejudice.`,
	},
	{
		DocumentID: "deposition-reyes",
		CaseID:     "case-sample",
		Template:   chunk.TemplateTranscript,
		Text: `Q. Please state your name for the record.
A. Maria Reyes.
Q. What was your role at the company during 2024?
A. I was the director of vendor management. I oversaw all contractor
relationships including the service agreement at issue.
Q. Did you ever communicate concerns about the contractor's performance?
A. Yes. In March I emailed my supervisor that the monthly deliverables
were consistently late and that we were considering termination.
Q. Did the company provide written notice of breach?
A. We sent a cure notice in April. The contractor did not respond
within the fifteen day cure period.`,
	},
}

var (
	dbPath  = flag.String("db", "./caselight_db", "path to BadgerDB database directory")
	srcDir  = flag.String("src", "", "directory of .txt files to index instead of the built-in corpus")
	caseID  = flag.String("case", "case-sample", "case ID for documents loaded from -src")
	doRefit = flag.Bool("refit", true, "refit the sparse vocabulary after seeding")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromDir loads every .txt file in dir as one document, named
// after the file.
func documentsFromDir(dir, caseID string) ([]ingest.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []ingest.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, ingest.Document{
			DocumentID: strings.TrimSuffix(entry.Name(), ".txt"),
			CaseID:     caseID,
			Text:       string(text),
		})
	}
	return docs, nil
}

func main() {
	engine, err := retrieval.NewEngine(*dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	ctx := context.Background()

	docs := sampleDocuments
	if *srcDir != "" {
		docs, err = documentsFromDir(*srcDir, *caseID)
		if err != nil {
			panic(err)
		}
	}

	for _, doc := range docs {
		receipt, err := engine.IndexDocument(ctx, doc)
		if err != nil {
			panic(err)
		}
		fmt.Printf("indexed %s: %d chunks\n", receipt.DocumentID, receipt.ChunksIndexed)
	}

	if *doRefit {
		if err := engine.RefitVocabulary(ctx); err != nil {
			panic(err)
		}
		fmt.Println("vocabulary refit complete")
	}
}
