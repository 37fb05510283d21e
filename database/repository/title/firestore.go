package titleRepo

import (
	"context"
	"fmt"

	"servicedesk/apperrors"
	"servicedesk/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreTitleRepo struct {
	coll *firestore.CollectionRef
}

func NewFirestoreTitleRepo(client *firestore.Client) TitleRepository {
	return &FirestoreTitleRepo{coll: client.Collection("titles")}
}

func (r *FirestoreTitleRepo) Create(ctx context.Context, t *models.Title) error {
	ref := r.coll.NewDoc()
	if _, err := ref.Create(ctx, t); err != nil {
		return apperrors.NewUpstreamError("failed to create title", err)
	}
	t.ID = ref.ID
	return nil
}

func (r *FirestoreTitleRepo) GetByID(ctx context.Context, id string) (*models.Title, error) {
	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", id))
		}
		return nil, apperrors.NewUpstreamError("failed to fetch title", err)
	}
	var t models.Title
	if err := snap.DataTo(&t); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode title", err)
	}
	t.ID = snap.Ref.ID
	return &t, nil
}

func (r *FirestoreTitleRepo) List(ctx context.Context, activeOnly bool) ([]models.Title, error) {
	q := r.coll.Query
	if activeOnly {
		q = q.Where("isActive", "==", true)
	}
	iter := q.OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []models.Title
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list titles", err)
		}
		var t models.Title
		if err := snap.DataTo(&t); err != nil {
			return nil, apperrors.NewUpstreamError("failed to decode title", err)
		}
		t.ID = snap.Ref.ID
		out = append(out, t)
	}
	return out, nil
}

func (r *FirestoreTitleRepo) Replace(ctx context.Context, t *models.Title) error {
	_, err := r.coll.Doc(t.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: t.Name},
		{Path: "description", Value: t.Description},
		{Path: "isActive", Value: t.IsActive},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", t.ID))
		}
		return apperrors.NewUpstreamError("failed to update title", err)
	}
	return nil
}

func (r *FirestoreTitleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", id))
		}
		return apperrors.NewUpstreamError("failed to delete title", err)
	}
	return nil
}
