package orderRepo

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

const collectionName = "serviceOrders"

// FirestoreServiceOrderRepo implements ServiceOrderRepository on Firestore.
type FirestoreServiceOrderRepo struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

// NewFirestoreServiceOrderRepo creates a repository over the serviceOrders collection.
func NewFirestoreServiceOrderRepo(client *firestore.Client) ServiceOrderRepository {
	return &FirestoreServiceOrderRepo{
		client: client,
		coll:   client.Collection(collectionName),
	}
}

func (r *FirestoreServiceOrderRepo) Create(ctx context.Context, order *models.ServiceOrder) error {
	ref := r.coll.NewDoc()
	if _, err := ref.Create(ctx, order); err != nil {
		return apperrors.NewUpstreamError("failed to create service order", err)
	}
	order.ID = ref.ID
	return nil
}

func (r *FirestoreServiceOrderRepo) GetByID(ctx context.Context, id string) (*models.ServiceOrder, error) {
	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
		}
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to fetch service order %s", id), err)
	}
	return decode(snap)
}

func (r *FirestoreServiceOrderRepo) List(ctx context.Context, filter models.ServiceOrderFilter) ([]models.ServiceOrder, error) {
	q := r.coll.Query
	if filter.Status != "" {
		if values := filter.Status.Normalize().StoredValues(); len(values) > 1 {
			q = q.Where("status", "in", values)
		} else {
			q = q.Where("status", "==", values[0])
		}
	}
	if filter.Priority != "" {
		q = q.Where("priority", "==", string(filter.Priority))
	}
	if filter.EstablishmentID != "" {
		q = q.Where("establishmentId", "==", filter.EstablishmentID)
	}
	if filter.TechnicianID != "" {
		q = q.Where("technicianId", "==", filter.TechnicianID)
	}
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("createdAt", ">=", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("createdAt", "<=", *filter.CreatedTo)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var orders []models.ServiceOrder
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list service orders", err)
		}
		order, err := decode(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// Mutate runs inside a Firestore transaction, so a concurrent write to the
// same order makes Firestore retry fn against the fresh document.
func (r *FirestoreServiceOrderRepo) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.ServiceOrder, error) {
	var result *models.ServiceOrder
	ref := r.coll.Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
			}
			return apperrors.NewUpstreamError(fmt.Sprintf("failed to fetch service order %s", id), err)
		}
		current, err := decode(snap)
		if err != nil {
			return err
		}

		patch, err := fn(current.Clone())
		if err != nil {
			return err
		}
		if patch == nil {
			result = current
			return nil
		}

		patch.Version = current.Version + 1
		if err := tx.Update(ref, toUpdates(patch.Fields())); err != nil {
			return apperrors.NewUpstreamError(fmt.Sprintf("failed to update service order %s", id), err)
		}
		patch.ApplyTo(current)
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *FirestoreServiceOrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
		}
		return apperrors.NewUpstreamError(fmt.Sprintf("failed to delete service order %s", id), err)
	}
	return nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := snap.DataTo(&order); err != nil {
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to decode service order %s", snap.Ref.ID), err)
	}
	order.ID = snap.Ref.ID
	order.Status = order.Status.Normalize()
	return &order, nil
}

func toUpdates(fields []models.PatchField) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		v := f.Value
		if v == nil {
			v = firestore.Delete
		}
		updates = append(updates, firestore.Update{Path: f.Path, Value: v})
	}
	return updates
}
