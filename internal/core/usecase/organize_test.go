package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type organizeFixture struct {
	store     *memStore
	repo      *memRepo
	extractor *extractorFake
	queue     *queueFake
	observer  *observerFake
	uc        *OrganizeDocumentsUseCase
}

func newOrganizeFixture(texts map[string]string) *organizeFixture {
	f := &organizeFixture{
		store:     newMemStore(),
		repo:      &memRepo{},
		extractor: &extractorFake{texts: texts},
		queue:     &queueFake{},
		observer:  &observerFake{},
	}
	f.uc = NewOrganizeDocumentsUseCase(
		f.extractor,
		newTestClassifier(nil),
		f.store,
		f.repo,
		OrganizeOptions{Queue: f.queue, Observer: f.observer, Concurrency: 2},
	)
	return f
}

func TestOrganizeClassifiesPlacesAndRecords(t *testing.T) {
	f := newOrganizeFixture(map[string]string{
		"notes.txt": "university lab assignment methodology",
	})
	files := []domain.UploadedFile{
		{Filename: "notes.txt", Content: []byte("university lab assignment methodology")},
		{Filename: "mycertificate_2023.png", Content: []byte{0x89, 0x50}},
		{Filename: "data.xyz", Content: []byte{}},
	}

	results, err := f.uc.Organize(context.Background(), "42", files)
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	want := []domain.Category{domain.CategoryAcademic, domain.CategoryCertificate, domain.CategoryOthers}
	for i, res := range results {
		if res.Failed() {
			t.Fatalf("result %d failed: %s", i, res.Error)
		}
		if res.Category != want[i] {
			t.Fatalf("result %d: expected %s, got %s", i, want[i], res.Category)
		}
		if res.RecordID == 0 {
			t.Fatalf("result %d: expected record id", i)
		}
		if !f.store.has("42", res.Category, res.StoredName) {
			t.Fatalf("result %d: file not placed under %s", i, res.Category)
		}
	}
	if len(f.repo.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(f.repo.records))
	}
	for _, call := range f.extractor.calls {
		if call == "mycertificate_2023.png" {
			t.Fatalf("extractor must be skipped when the filename decides")
		}
	}
	if len(f.observer.stages) != 3 {
		t.Fatalf("expected 3 observed decisions, got %d", len(f.observer.stages))
	}
}

func TestOrganizeResolvesNameCollisions(t *testing.T) {
	f := newOrganizeFixture(nil)
	for _, want := range []string{"report.pdf", "report_1.pdf", "report_2.pdf"} {
		results, err := f.uc.Organize(context.Background(), "1", []domain.UploadedFile{{Filename: "report.pdf"}})
		if err != nil {
			t.Fatalf("Organize() error = %v", err)
		}
		if results[0].StoredName != want {
			t.Fatalf("expected stored name %s, got %s", want, results[0].StoredName)
		}
		if results[0].Category != "PDFs" {
			t.Fatalf("expected PDFs, got %s", results[0].Category)
		}
	}
}

func TestOrganizeIsolatesPerFileFailures(t *testing.T) {
	f := newOrganizeFixture(nil)
	f.repo.createErr = errors.New("db down")

	results, err := f.uc.Organize(context.Background(), "7", []domain.UploadedFile{
		{Filename: "a.txt"},
		{Filename: "   "},
	})
	if err != nil {
		t.Fatalf("Organize() error = %v", err)
	}
	if !strings.Contains(results[0].Error, "record upload") {
		t.Fatalf("expected record error, got %q", results[0].Error)
	}
	if len(f.store.deleted) != 1 {
		t.Fatalf("expected orphaned bytes to be removed, got %v", f.store.deleted)
	}
	if results[1].Error != "empty filename" {
		t.Fatalf("expected empty filename error, got %q", results[1].Error)
	}
}

func TestOrganizeRequiresUser(t *testing.T) {
	f := newOrganizeFixture(nil)
	_, err := f.uc.Organize(context.Background(), " ", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPreviewDoesNotStore(t *testing.T) {
	f := newOrganizeFixture(map[string]string{"bill.txt": "invoice with gst and tax amount"})
	decision, extraction := f.uc.Preview(context.Background(), domain.UploadedFile{Filename: "bill.txt"})
	if decision.Category != domain.CategoryBusiness {
		t.Fatalf("expected Business, got %s", decision.Category)
	}
	if extraction.Method != domain.MethodPlainText {
		t.Fatalf("expected plain-text method, got %s", extraction.Method)
	}
	if len(f.repo.records) != 0 || len(f.store.files) != 0 {
		t.Fatalf("preview must not persist anything")
	}
}

func TestPreviewFoldsAccentedFilenameBeforeIntent(t *testing.T) {
	f := newOrganizeFixture(nil)
	decision, _ := f.uc.Preview(context.Background(), domain.UploadedFile{Filename: "Résumé 2024.pdf"})
	if decision.Category != domain.CategoryWork || decision.Stage != domain.StageFilenameIntent {
		t.Fatalf("expected Work by filename intent, got %s via %s", decision.Category, decision.Stage)
	}
	if len(f.extractor.calls) != 0 {
		t.Fatalf("filename intent must skip extraction, got %v", f.extractor.calls)
	}
}

func TestStageAndProcessJob(t *testing.T) {
	f := newOrganizeFixture(map[string]string{"lab_report.txt": "experiment methodology results conclusion"})

	jobs, err := f.uc.Stage(context.Background(), "9", []domain.UploadedFile{
		{Filename: "lab report.txt", Content: []byte("experiment methodology results conclusion")},
	})
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if len(jobs) != 1 || len(f.queue.jobs) != 1 {
		t.Fatalf("expected one published job, got %d/%d", len(jobs), len(f.queue.jobs))
	}
	if jobs[0].Filename != "lab_report.txt" || jobs[0].ID == "" {
		t.Fatalf("unexpected job %+v", jobs[0])
	}

	result, err := f.uc.ProcessJob(context.Background(), jobs[0])
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if result.Category != domain.CategoryAcademic {
		t.Fatalf("expected Academic, got %s", result.Category)
	}
	if len(f.store.staged) != 0 {
		t.Fatalf("expected staged bytes to be removed")
	}
}

func TestStagePublishFailureCleansUp(t *testing.T) {
	f := newOrganizeFixture(nil)
	f.queue.err = domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("no servers"))

	jobs, err := f.uc.Stage(context.Background(), "9", []domain.UploadedFile{{Filename: "a.txt"}})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if len(jobs) != 0 || len(f.store.staged) != 0 {
		t.Fatalf("expected no jobs and no staged bytes, got %d/%d", len(jobs), len(f.store.staged))
	}
}

func TestStageWithoutQueue(t *testing.T) {
	uc := NewOrganizeDocumentsUseCase(&extractorFake{}, newTestClassifier(nil), newMemStore(), &memRepo{}, OrganizeOptions{})
	if _, err := uc.Stage(context.Background(), "1", nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report 1.txt":          "report_1.txt",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\notes.txt`: "notes.txt",
		"résumé.pdf":            "resume.pdf",
		"Résumé 2024.pdf":       "Resume_2024.pdf",
		"Ünïcödé ﬁle.txt":       "Unicode_file.txt",
		"..hidden":              "hidden",
		"???":                   "",
		"":                      "",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
