package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

type DocTaskRepo struct {
	store docstore.Store
}

func NewTaskRepo(store docstore.Store) *DocTaskRepo {
	return &DocTaskRepo{store: store}
}

func (r *DocTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	nowIfZero(&t.CreatedAt)
	return insert(ctx, r.store, CollectionTasks, &t.ID, t)
}

func (r *DocTaskRepo) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	return getOne[domain.Task](ctx, r.store, CollectionTasks, id)
}

func (r *DocTaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	return r.Find(ctx, nil, docstore.FindOptions{})
}

func (r *DocTaskRepo) ListByIDs(ctx context.Context, ids []int) ([]domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, docstore.Where(docstore.In(docstore.IDField, ids...)), docstore.FindOptions{})
}

func (r *DocTaskRepo) ListUnscheduled(ctx context.Context) ([]domain.Task, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Task
	for _, t := range all {
		if !t.IsScheduled() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *DocTaskRepo) Find(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]domain.Task, error) {
	docs, err := r.store.Find(ctx, CollectionTasks, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return fromDocs[domain.Task](docs)
}

func (r *DocTaskRepo) SetReview(ctx context.Context, id int, review domain.Review) error {
	return updateOne(ctx, r.store, CollectionTasks, id, docstore.Set("review", review))
}

func (r *DocTaskRepo) SetCalendarScheduling(ctx context.Context, id int, cs domain.CalendarScheduling) error {
	return updateOne(ctx, r.store, CollectionTasks, id, docstore.Set("calendar_scheduling", cs))
}

func (r *DocTaskRepo) Delete(ctx context.Context, id int) error {
	n, err := r.store.DeleteMany(ctx, CollectionTasks, byID(id))
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
