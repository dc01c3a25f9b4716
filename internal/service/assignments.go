package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// AssignmentManager закрепляет клиентов за продавцами.
// У клиента в любой момент не больше одного активного закрепления.
type AssignmentManager struct {
	store  Store
	logger *zap.Logger
}

// NewAssignmentManager создаёт менеджер закреплений.
func NewAssignmentManager(store Store, logger *zap.Logger) *AssignmentManager {
	return &AssignmentManager{store: store, logger: logger}
}

// Assign закрепляет клиента за продавцом.
func (am *AssignmentManager) Assign(ctx context.Context, sellerID, clientID int64) (int64, error) {
	var assignmentID int64

	err := am.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockClient(ctx, clientID); err != nil {
			return err
		}
		if _, err := activeSeller(ctx, tx, sellerID); err != nil {
			return err
		}

		current, err := tx.ActiveAssignmentForClient(ctx, clientID)
		if err == nil {
			return fmt.Errorf("%w: client %d is served by seller %d", model.ErrAlreadyAssigned, clientID, current.SellerID)
		}
		if !isNotFound(err) {
			return err
		}

		if err := tx.PurgeInactiveAssignments(ctx, sellerID, clientID); err != nil {
			return err
		}

		assignmentID, err = tx.InsertAssignment(ctx, &model.Assignment{
			ClientID: clientID,
			SellerID: sellerID,
			Status:   model.AssignmentActive,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("assign client: %w", err)
	}

	am.logger.Info("client assigned",
		zap.Int64("assignment_id", assignmentID),
		zap.Int64("client_id", clientID),
		zap.Int64("seller_id", sellerID),
	)

	return assignmentID, nil
}

// Reassign передаёт клиента другому продавцу: прежняя запись удаляется, новая создаётся активной.
func (am *AssignmentManager) Reassign(ctx context.Context, assignmentID, newSellerID int64) (int64, error) {
	var newID int64

	err := am.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.LockAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if _, err := tx.LockClient(ctx, current.ClientID); err != nil {
			return err
		}
		if _, err := activeSeller(ctx, tx, newSellerID); err != nil {
			return err
		}

		if err := tx.DeleteAssignment(ctx, assignmentID); err != nil {
			return err
		}
		if err := tx.PurgeInactiveAssignments(ctx, newSellerID, current.ClientID); err != nil {
			return err
		}

		newID, err = tx.InsertAssignment(ctx, &model.Assignment{
			ClientID: current.ClientID,
			SellerID: newSellerID,
			Status:   model.AssignmentActive,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reassign client: %w", err)
	}

	am.logger.Info("client reassigned",
		zap.Int64("previous_assignment_id", assignmentID),
		zap.Int64("assignment_id", newID),
		zap.Int64("seller_id", newSellerID),
	)

	return newID, nil
}

// Unassign снимает активное закрепление.
func (am *AssignmentManager) Unassign(ctx context.Context, assignmentID int64) error {
	err := am.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		a, err := tx.LockAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a.Status != model.AssignmentActive {
			return fmt.Errorf("%w: assignment %d is not active", model.ErrInvalidState, assignmentID)
		}
		return tx.SetAssignmentStatus(ctx, assignmentID, model.AssignmentInactive)
	})
	if err != nil {
		return fmt.Errorf("unassign client: %w", err)
	}
	return nil
}

// ActiveAssignmentForClient возвращает текущее закрепление клиента.
func (am *AssignmentManager) ActiveAssignmentForClient(ctx context.Context, clientID int64) (*model.Assignment, error) {
	return am.store.ActiveAssignmentForClient(ctx, clientID)
}

// ListActiveAssignments возвращает все активные закрепления.
func (am *AssignmentManager) ListActiveAssignments(ctx context.Context) ([]model.Assignment, error) {
	return am.store.ListActiveAssignments(ctx)
}

// ListUnassignedClients возвращает клиентов без продавца.
func (am *AssignmentManager) ListUnassignedClients(ctx context.Context) ([]model.Client, error) {
	return am.store.ListUnassignedClients(ctx)
}

// ListSellerWorkload возвращает продавцов с числом закреплённых клиентов.
func (am *AssignmentManager) ListSellerWorkload(ctx context.Context) ([]model.SellerWorkload, error) {
	return am.store.ListSellerWorkload(ctx)
}
