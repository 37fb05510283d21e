package userRepo

import (
	"context"
	"fmt"
	"strings"

	"servicedesk/apperrors"
	"servicedesk/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreUserRepo implements UserRepository on the users collection.
type FirestoreUserRepo struct {
	coll *firestore.CollectionRef
}

func NewFirestoreUserRepo(client *firestore.Client) UserRepository {
	return &FirestoreUserRepo{coll: client.Collection("users")}
}

func (r *FirestoreUserRepo) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	if _, err := r.coll.Doc(user.UID).Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return &apperrors.ConflictError{Message: "a user with this id already exists"}
		}
		return apperrors.NewUpstreamError("failed to create user", err)
	}
	return nil
}

func (r *FirestoreUserRepo) GetByID(ctx context.Context, uid string) (*models.User, error) {
	snap, err := r.coll.Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
		}
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to fetch user %s", uid), err)
	}
	return decode(snap)
}

func (r *FirestoreUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := r.coll.Where("email", "==", strings.ToLower(email)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %s not found", email))
	}
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to fetch user by email", err)
	}
	return decode(snap)
}

func (r *FirestoreUserRepo) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	q := r.coll.Query
	if filter.UserType != "" {
		q = q.Where("userType", "==", string(filter.UserType))
	}
	if filter.EstablishmentID != "" {
		q = q.Where("establishmentId", "==", filter.EstablishmentID)
	}
	if filter.ActiveOnly {
		q = q.Where("isActive", "==", true)
	}
	iter := q.OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []models.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.NewUpstreamError("failed to list users", err)
		}
		u, err := decode(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *FirestoreUserRepo) Update(ctx context.Context, uid string, upd models.UserUpdate) (*models.User, error) {
	fields := upd.Fields()
	updates := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		updates = append(updates, firestore.Update{Path: f.Path, Value: f.Value})
	}
	if _, err := r.coll.Doc(uid).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
		}
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to update user %s", uid), err)
	}
	return r.GetByID(ctx, uid)
}

func (r *FirestoreUserRepo) Delete(ctx context.Context, uid string) error {
	if _, err := r.coll.Doc(uid).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
		}
		return apperrors.NewUpstreamError(fmt.Sprintf("failed to delete user %s", uid), err)
	}
	return nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to decode user %s", snap.Ref.ID), err)
	}
	u.UID = snap.Ref.ID
	return &u, nil
}
