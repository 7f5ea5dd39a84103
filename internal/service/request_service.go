package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	base
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(tx domain.Transactor, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	return &RequestService{base: newBase(tx, eventBus, clock, logger, "request_service")}
}

func (s *RequestService) CreateRequest(ctx context.Context, description string, requestorID int64) (*models.ItemRequestResponse, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.Validation("Request description must not be blank")
	}

	var created *models.ItemRequest
	err := s.write(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, requestorID); err != nil {
			return err
		}
		created = &models.ItemRequest{
			Description: description,
			RequestorID: requestorID,
			Created:     s.now().UTC(),
		}
		return store.Requests().CreateRequest(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("request_id", created.ID).Int64("user_id", requestorID).Msg("item request created")
	s.publish(ctx, events.EventRequestCreated, events.RequestEventPayload{RequestID: created.ID, RequestorID: requestorID})

	return models.ToItemRequestResponse(created), nil
}

func (s *RequestService) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequestResponse, error) {
	var result []*models.ItemRequestResponse
	err := s.read(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, requestorID); err != nil {
			return err
		}
		requests, err := store.Requests().GetRequestsByRequestor(ctx, requestorID)
		if err != nil {
			return err
		}
		result, err = withAnswers(ctx, store, requests)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetAllRequests pages through other users' requests. from is an element index;
// it is rounded down to the start of its page.
func (s *RequestService) GetAllRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequestResponse, error) {
	if from < 0 {
		return nil, domain.Validation("Parameter from must not be negative")
	}
	if size <= 0 {
		return nil, domain.Validation("Parameter size must be positive")
	}
	offset := (from / size) * size

	var result []*models.ItemRequestResponse
	err := s.read(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, requestorID); err != nil {
			return err
		}
		requests, err := store.Requests().GetRequestsExcept(ctx, requestorID, offset, size)
		if err != nil {
			return err
		}
		result, err = withAnswers(ctx, store, requests)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RequestService) GetRequest(ctx context.Context, requestID, callerID int64) (*models.ItemRequestResponse, error) {
	var result []*models.ItemRequestResponse
	err := s.read(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, callerID); err != nil {
			return err
		}
		request, err := store.Requests().GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		result, err = withAnswers(ctx, store, []*models.ItemRequest{request})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// withAnswers maps requests and attaches the items listed against them in one query.
func withAnswers(ctx context.Context, store domain.Store, requests []*models.ItemRequest) ([]*models.ItemRequestResponse, error) {
	result := make([]*models.ItemRequestResponse, 0, len(requests))
	byID := make(map[int64]*models.ItemRequestResponse, len(requests))
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		resp := models.ToItemRequestResponse(r)
		result = append(result, resp)
		byID[r.ID] = resp
		ids = append(ids, r.ID)
	}

	items, err := store.Items().GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if resp := byID[item.RequestID.Int64]; resp != nil {
			resp.Items = append(resp.Items, models.ToItemResponse(item))
		}
	}
	return result, nil
}
