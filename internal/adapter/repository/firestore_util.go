package repository

import (
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"foodshare/pkg/errors"
)

const (
	profilesCollection = "profiles"
	listingsCollection = "listings"
	claimsCollection   = "claims"
	messagesCollection = "messages"
	reportsCollection  = "reports"
)

// readAll decodes every document the iterator yields.
func readAll[T any](iter *firestore.DocumentIterator, what string) ([]*T, error) {
	defer iter.Stop()

	out := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query "+what, err)
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, errors.Internal("Failed to decode "+what, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// readDoc decodes a single snapshot, mapping a missing document to NOT_FOUND.
func readDoc[T any](doc *firestore.DocumentSnapshot, err error, resource string) (*T, error) {
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound(resource, err)
		}
		return nil, errors.Internal("Failed to get "+resource, err)
	}

	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, errors.Internal("Failed to decode "+resource, err)
	}
	return &v, nil
}

// asAppError passes AppErrors through and wraps anything else as INTERNAL_ERROR.
func asAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.Internal(message, err)
}
