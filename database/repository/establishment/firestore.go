package establishmentRepo

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

// FirestoreEstablishmentRepo stores establishments in the establishments
// collection and sectors in each establishment's sectors sub-collection.
type FirestoreEstablishmentRepo struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

func NewFirestoreEstablishmentRepo(client *firestore.Client) EstablishmentRepository {
	return &FirestoreEstablishmentRepo{
		client: client,
		coll:   client.Collection("establishments"),
	}
}

func (r *FirestoreEstablishmentRepo) sectors(establishmentID string) *firestore.CollectionRef {
	return r.coll.Doc(establishmentID).Collection("sectors")
}

func (r *FirestoreEstablishmentRepo) Create(ctx context.Context, e *models.Establishment) error {
	ref := r.coll.NewDoc()
	if _, err := ref.Create(ctx, e); err != nil {
		return apperrors.NewUpstreamError("failed to create establishment", err)
	}
	e.ID = ref.ID
	return nil
}

func (r *FirestoreEstablishmentRepo) GetByID(ctx context.Context, id string) (*models.Establishment, error) {
	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", id))
		}
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to fetch establishment %s", id), err)
	}
	var e models.Establishment
	if err := snap.DataTo(&e); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode establishment", err)
	}
	e.ID = snap.Ref.ID
	return &e, nil
}

func (r *FirestoreEstablishmentRepo) List(ctx context.Context, activeOnly bool) ([]models.Establishment, error) {
	q := r.coll.Query
	if activeOnly {
		q = q.Where("isActive", "==", true)
	}
	iter := q.OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []models.Establishment
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list establishments", err)
		}
		var e models.Establishment
		if err := snap.DataTo(&e); err != nil {
			return nil, apperrors.NewUpstreamError("failed to decode establishment", err)
		}
		e.ID = snap.Ref.ID
		out = append(out, e)
	}
	return out, nil
}

func (r *FirestoreEstablishmentRepo) Replace(ctx context.Context, e *models.Establishment) error {
	_, err := r.coll.Doc(e.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: e.Name},
		{Path: "address", Value: e.Address},
		{Path: "phone", Value: e.Phone},
		{Path: "email", Value: e.Email},
		{Path: "isActive", Value: e.IsActive},
		{Path: "updatedAt", Value: e.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", e.ID))
		}
		return apperrors.NewUpstreamError("failed to update establishment", err)
	}
	return nil
}

// Delete removes the sectors in one batch before the establishment itself.
func (r *FirestoreEstablishmentRepo) Delete(ctx context.Context, id string) error {
	refs, err := r.sectors(id).DocumentRefs(ctx).GetAll()
	if err != nil {
		return apperrors.NewUpstreamError("failed to list sectors", err)
	}
	batch := r.client.Batch()
	for _, ref := range refs {
		batch.Delete(ref)
	}
	batch.Delete(r.coll.Doc(id), firestore.Exists)
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", id))
		}
		return apperrors.NewUpstreamError("failed to delete establishment", err)
	}
	return nil
}

func (r *FirestoreEstablishmentRepo) CreateSector(ctx context.Context, s *models.Sector) error {
	ref := r.sectors(s.EstablishmentID).NewDoc()
	if _, err := ref.Create(ctx, s); err != nil {
		return apperrors.NewUpstreamError("failed to create sector", err)
	}
	s.ID = ref.ID
	return nil
}

func (r *FirestoreEstablishmentRepo) GetSector(ctx context.Context, establishmentID, sectorID string) (*models.Sector, error) {
	snap, err := r.sectors(establishmentID).Doc(sectorID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sector %s not found", sectorID))
		}
		return nil, apperrors.NewUpstreamError("failed to fetch sector", err)
	}
	var s models.Sector
	if err := snap.DataTo(&s); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode sector", err)
	}
	s.ID = snap.Ref.ID
	s.EstablishmentID = establishmentID
	return &s, nil
}

func (r *FirestoreEstablishmentRepo) ListSectors(ctx context.Context, establishmentID string) ([]models.Sector, error) {
	iter := r.sectors(establishmentID).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []models.Sector
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list sectors", err)
		}
		var s models.Sector
		if err := snap.DataTo(&s); err != nil {
			return nil, apperrors.NewUpstreamError("failed to decode sector", err)
		}
		s.ID = snap.Ref.ID
		s.EstablishmentID = establishmentID
		out = append(out, s)
	}
	return out, nil
}

func (r *FirestoreEstablishmentRepo) DeleteSector(ctx context.Context, establishmentID, sectorID string) error {
	if _, err := r.sectors(establishmentID).Doc(sectorID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("sector %s not found", sectorID))
		}
		return apperrors.NewUpstreamError("failed to delete sector", err)
	}
	return nil
}
