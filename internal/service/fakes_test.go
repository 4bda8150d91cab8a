package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"sync"
	"testing"
	"time"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
	"recruitment_portal/internal/storage"

	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	findErr error
	// simulates a unique index hit that slipped past the pre-check
	raceOnCreate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raceOnCreate {
		return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]model.Job
	// simulates a delete that lands between a read and the following update
	deleteBeforeUpdate bool
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]model.Job{}}
}

func (r *fakeJobRepo) Create(_ context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		return &j, nil
	}
	return nil, nil
}

func (r *fakeJobRepo) FindAll(_ context.Context, filters model.JobFilters) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := []model.Job{}
	for _, j := range r.jobs {
		if filters.Department != nil && *filters.Department != "" && j.Department != *filters.Department {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].PostedDate.After(jobs[b].PostedDate) })
	return jobs, nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteBeforeUpdate {
		delete(r.jobs, job.ID)
	}
	if _, ok := r.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, repository.ErrNotFound)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return false, nil
	}
	delete(r.jobs, id)
	return true, nil
}

type fakeApplicationRepo struct {
	mu        sync.Mutex
	apps      map[string]model.Application
	createErr error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[string]model.Application{}}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeApplicationRepo) FindByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.apps[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *fakeApplicationRepo) list(keep func(model.Application) bool) []model.Application {
	apps := []model.Application{}
	for _, a := range r.apps {
		if keep(a) {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedDate.After(apps[j].AppliedDate) })
	return apps
}

func (r *fakeApplicationRepo) FindByUser(_ context.Context, userID string) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a model.Application) bool { return a.UserID == userID }), nil
}

func (r *fakeApplicationRepo) FindAll(_ context.Context, filters model.ApplicationFilters) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a model.Application) bool {
		return filters.Status == nil || *filters.Status == "" || a.Status == *filters.Status
	}), nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id, status string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	a.Status = status
	r.apps[id] = a
	return &a, nil
}

func (r *fakeApplicationRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range r.apps {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *fakeApplicationRepo) TopDepartments(_ context.Context, limit int) ([]model.DepartmentCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range r.apps {
		counts[a.Department]++
	}
	out := []model.DepartmentCount{}
	for d, c := range counts {
		out = append(out, model.DepartmentCount{Department: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Department < out[j].Department
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr map[string]error // by prefix
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}, saveErr: map[string]error{}}
}

func (s *fakeStorage) Save(_ context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveErr[prefix]; err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	key := storage.NewKey(prefix, fh.Filename)
	s.files[key] = data
	return key, nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type countingRecorder struct {
	mu          sync.Mutex
	events      map[string]int
	submissions int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{events: map[string]int{}}
}

func (r *countingRecorder) RecordRequest(string, string, int, time.Duration) {}

func (r *countingRecorder) RecordAuthEvent(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event]++
}

func (r *countingRecorder) RecordApplicationSubmitted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions++
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
