package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, repository.ErrDuplicate)
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]model.Job
}

func (r *memJobRepo) Create(_ context.Context, j *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = *j
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		return &j, nil
	}
	return nil, nil
}

func (r *memJobRepo) FindAll(_ context.Context, f model.JobFilters) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := []model.Job{}
	for _, j := range r.jobs {
		if f.Department != nil && j.Department != *f.Department {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].PostedDate.After(jobs[b].PostedDate) })
	return jobs, nil
}

func (r *memJobRepo) Update(_ context.Context, j *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = *j
	return nil
}

func (r *memJobRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[id]
	delete(r.jobs, id)
	return ok, nil
}

type memApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]model.Application
}

func (r *memApplicationRepo) Create(_ context.Context, a *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = *a
	return nil
}

func (r *memApplicationRepo) FindByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.apps[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *memApplicationRepo) filter(keep func(model.Application) bool) []model.Application {
	out := []model.Application{}
	for _, a := range r.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out
}

func (r *memApplicationRepo) FindByUser(_ context.Context, userID string) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(a model.Application) bool { return a.UserID == userID }), nil
}

func (r *memApplicationRepo) FindAll(_ context.Context, f model.ApplicationFilters) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(a model.Application) bool { return f.Status == nil || a.Status == *f.Status }), nil
}

func (r *memApplicationRepo) UpdateStatus(_ context.Context, id, status string) (*model.Application, error) {
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

func (r *memApplicationRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range r.apps {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *memApplicationRepo) TopDepartments(_ context.Context, limit int) ([]model.DepartmentCount, error) {
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
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
