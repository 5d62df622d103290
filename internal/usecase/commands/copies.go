package commands

import (
	"context"
	"errors"
	"log/slog"

	"circulation/internal/domain/copy"
	"circulation/internal/infra"
	"circulation/internal/pkg/clock"
	"circulation/internal/pkg/errs"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidCopyTransition = errs.New("copy cannot make this transition")

// CopyCommands are the shelf-side operations on individual copies.
type CopyCommands interface {
	// SendToMaintenance pulls an AVAILABLE copy off the shelf.
	SendToMaintenance(ctx context.Context, copyID uuid.UUID) (*copy.Copy, error)
	// ReturnFromMaintenance puts the copy back and stamps the maintenance
	// time.
	ReturnFromMaintenance(ctx context.Context, copyID uuid.UUID) (*copy.Copy, error)
}

type copyCommandsImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewCopyCommands(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) CopyCommands {
	return &copyCommandsImpl{uow: uow, clock: clk, logger: logger}
}

func (c *copyCommandsImpl) SendToMaintenance(ctx context.Context, copyID uuid.UUID) (*copy.Copy, error) {
	result, err := c.mutateCopy(ctx, copyID, func(cp *copy.Copy) error {
		return cp.SendToMaintenance()
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("copy sent to maintenance", "copy_id", copyID)
	return result, nil
}

func (c *copyCommandsImpl) ReturnFromMaintenance(ctx context.Context, copyID uuid.UUID) (*copy.Copy, error) {
	now := c.clock.Now()
	result, err := c.mutateCopy(ctx, copyID, func(cp *copy.Copy) error {
		return cp.ReturnFromMaintenance(now)
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("copy returned from maintenance", "copy_id", copyID)
	return result, nil
}

func (c *copyCommandsImpl) mutateCopy(ctx context.Context, copyID uuid.UUID, mutate func(*copy.Copy) error) (*copy.Copy, error) {
	var result *copy.Copy

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cp, err := tx.Copies().FindByID(ctx, copyID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCopyNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := mutate(cp); err != nil {
			if errors.Is(err, copy.ErrInvalidTransition) {
				return ErrInvalidCopyTransition
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := tx.Copies().Update(ctx, cp); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
