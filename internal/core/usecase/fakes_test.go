package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type memStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	staged   map[string][]byte
	placeErr error
	stageErr error
	deleted  []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, staged: map[string][]byte{}}
}

func storeKey(userID string, category domain.Category, name string) string {
	return path.Join("user_"+userID, string(category), name)
}

func (s *memStore) Place(_ context.Context, userID string, category domain.Category, filename string, body io.Reader) (string, error) {
	if s.placeErr != nil {
		return "", s.placeErr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	name := filename
	for i := 1; ; i++ {
		if _, ok := s.files[storeKey(userID, category, name)]; !ok {
			break
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	s.files[storeKey(userID, category, name)] = raw
	return name, nil
}

func (s *memStore) Open(_ context.Context, userID string, category domain.Category, filename string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.files[storeKey(userID, category, filename)]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open", errors.New(filename))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memStore) Delete(_ context.Context, userID string, category domain.Category, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(userID, category, filename)
	if _, ok := s.files[key]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete", errors.New(filename))
	}
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) List(_ context.Context, userID string, category domain.Category) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := path.Join("user_"+userID, string(category)) + "/"
	var names []string
	for key := range s.files {
		if strings.HasPrefix(key, prefix) {
			names = append(names, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := "user_" + userID + "/"
	for key := range s.files {
		if strings.HasPrefix(key, prefix) {
			delete(s.files, key)
		}
	}
	return nil
}

func (s *memStore) Stage(_ context.Context, userID, filename string, body io.Reader) (string, error) {
	if s.stageErr != nil {
		return "", s.stageErr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d_%s", len(s.staged), filename)
	s.staged[userID+"/"+key] = raw
	return key, nil
}

func (s *memStore) OpenStaged(_ context.Context, userID, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.staged[userID+"/"+key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open staged", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memStore) RemoveStaged(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, userID+"/"+key)
	return nil
}

func (s *memStore) has(userID string, category domain.Category, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[storeKey(userID, category, name)]
	return ok
}

type memRepo struct {
	mu        sync.Mutex
	records   []domain.UploadRecord
	nextID    int64
	createErr error
}

func (r *memRepo) Create(_ context.Context, rec *domain.UploadRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	r.records = append(r.records, *rec)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*domain.UploadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			copyRec := rec
			return &copyRec, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("id %d", id))
}

func (r *memRepo) ListByUser(_ context.Context, userID string) ([]domain.UploadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UploadRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) ListAll(context.Context) ([]domain.UploadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.UploadRecord(nil), r.records...), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "delete upload", fmt.Errorf("id %d", id))
}

func (r *memRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var removed int64
	for _, rec := range r.records {
		if rec.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return removed, nil
}

type extractorFake struct {
	mu     sync.Mutex
	texts  map[string]string
	calls  []string
	method string
}

func (f *extractorFake) Extract(_ context.Context, file domain.UploadedFile) domain.Extraction {
	f.mu.Lock()
	f.calls = append(f.calls, file.Filename)
	f.mu.Unlock()
	text := f.texts[file.Filename]
	if text == "" {
		return domain.Extraction{Method: domain.MethodNone, Failure: domain.ExtractionNoText}
	}
	method := f.method
	if method == "" {
		method = domain.MethodPlainText
	}
	return domain.Extraction{Text: text, Method: method}
}

type generatorFake struct {
	answer  string
	err     error
	prompts []string
}

func (f *generatorFake) GenerateCategory(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type queueFake struct {
	jobs []domain.OrganizeJob
	err  error
}

func (q *queueFake) PublishOrganizeJob(_ context.Context, job domain.OrganizeJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queueFake) SubscribeOrganizeJobs(context.Context, func(context.Context, domain.OrganizeJob) error) error {
	return errors.New("not implemented")
}

type observerFake struct {
	mu          sync.Mutex
	extractions []string
	stages      []domain.Stage
}

func (o *observerFake) ObserveExtraction(method string, _ domain.ExtractionFailure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extractions = append(o.extractions, method)
}

func (o *observerFake) ObserveDecision(decision domain.Decision) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, decision.Stage)
}
