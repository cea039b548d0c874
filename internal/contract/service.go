package contract

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/loggable/internal/emit"
	"github.com/GriffinCanCode/loggable/internal/fault"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/loggable"
	"github.com/GriffinCanCode/loggable/internal/trace"
)

// Message codes of the functional errors returned by Service.
const (
	CodeNotFound        = "contract.not.found"
	CodeNotFoundForUser = "contract.not.found.for.user"
	CodeNotAllowed      = "add.contract.not.allowed"
	CodeUpdateNotFound  = "update.contract.not.found"
	CodeDeleteNotFound  = "delete.contract.not.found"
)

// ComponentName is the name the service is instrumented and logged under.
const ComponentName = "ContractService"

// Service manages contracts. Every operation is instrumented with debug
// records enabled.
type Service struct {
	repo   Repository
	sink   logging.Sink
	logger *zap.Logger

	findAll    func(context.Context) ([]Contract, error)
	find       func(context.Context, int) (Contract, error)
	findByUser func(context.Context, int) ([]Contract, error)
	add        func(context.Context, Contract, string) (Contract, error)
	update     func(context.Context, int, Contract) (Contract, error)
	remove     func(context.Context, int) error
}

// NewService creates a service over repo whose operations run through
// interceptor.
func NewService(repo Repository, interceptor *loggable.Interceptor, sinks logging.SinkFactory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		sink:   sinks.For(ComponentName),
		logger: logger,
	}

	c := loggable.NamedComponent(reflect.TypeOf(Service{}).PkgPath(), ComponentName, loggable.Declared{Debug: loggable.On})
	s.findAll = loggable.Func0(interceptor, c.Method("FindAllContracts", loggable.Declared{}), s.findAllContracts)
	s.find = loggable.Func1(interceptor, c.Method("FindContract", loggable.Declared{}), s.findContract)
	s.findByUser = loggable.Func1(interceptor, c.Method("FindContractsByUserID", loggable.Declared{}), s.findContractsByUserID)
	s.add = loggable.Func2(interceptor, c.Method("AddContract", loggable.Declared{}), s.addContract)
	s.update = loggable.Func2(interceptor, c.Method("UpdateContract", loggable.Declared{}), s.updateContract)
	s.remove = loggable.Proc1(interceptor, c.Method("DeleteContract", loggable.Declared{}), s.deleteContract)
	return s
}

// FindAllContracts returns every contract.
func (s *Service) FindAllContracts(ctx context.Context) ([]Contract, error) {
	return s.findAll(ctx)
}

// FindContract returns the contract with the given id.
func (s *Service) FindContract(ctx context.Context, id int) (Contract, error) {
	return s.find(ctx, id)
}

// FindContractsByUserID returns the contracts of a user. A user without
// contracts is a CodeNotFoundForUser error.
func (s *Service) FindContractsByUserID(ctx context.Context, userID int) ([]Contract, error) {
	return s.findByUser(ctx, userID)
}

// AddContract stores a new contract for a user having role. USER may not
// add VAC contracts and ADMIN may not add LOA contracts.
func (s *Service) AddContract(ctx context.Context, c Contract, role string) (Contract, error) {
	return s.add(ctx, c, role)
}

// UpdateContract replaces the contract with the given id.
func (s *Service) UpdateContract(ctx context.Context, id int, c Contract) (Contract, error) {
	return s.update(ctx, id, c)
}

// DeleteContract removes the contract with the given id.
func (s *Service) DeleteContract(ctx context.Context, id int) error {
	return s.remove(ctx, id)
}

func (s *Service) findAllContracts(ctx context.Context) ([]Contract, error) {
	contracts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list contracts")
	}
	return contracts, nil
}

func (s *Service) findContract(ctx context.Context, id int) (Contract, error) {
	trace.CurrentBuilder(ctx).Put("id", strconv.Itoa(id))
	s.debug(ctx, "Trying to retrieve contract from data repository, id=%d", id)

	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Contract{}, fault.Functional(CodeNotFound, "Could not find contract with id = %d", id)
	}
	if err != nil {
		return Contract{}, pkgerrors.Wrapf(err, "failed to load contract %d", id)
	}
	return c, nil
}

func (s *Service) findContractsByUserID(ctx context.Context, userID int) ([]Contract, error) {
	trace.CurrentBuilder(ctx).Put("userId", strconv.Itoa(userID))
	s.debug(ctx, "Trying to retrieve contracts from data repository, userId=%d", userID)

	contracts, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load contracts of user %d", userID)
	}
	if len(contracts) == 0 {
		return nil, fault.Functional(CodeNotFoundForUser, "Could not find contract for this userId = %d", userID)
	}

	trace.CurrentBuilder(ctx).Put("contracts", fmt.Sprint(contracts))
	s.debug(ctx, "Found contracts [%v]", contracts)
	return contracts, nil
}

func (s *Service) addContract(ctx context.Context, c Contract, role string) (Contract, error) {
	owner := map[string]string{"userId": strconv.Itoa(c.UserID)}

	if !allowed(role, c.Type) {
		s.business(ctx, owner, "This contract type %s can't be added for this user %s role", c.Type, role)
		return Contract{}, fault.Functional(CodeNotAllowed, "Contract type %s can't be added by a user having %s role", c.Type, role)
	}

	c.ID = 0
	added, err := s.repo.Save(ctx, c)
	if err != nil {
		return Contract{}, pkgerrors.Wrap(err, "failed to save contract")
	}
	s.business(ctx, owner, "New contract with id %d has been added", added.ID)
	return added, nil
}

func (s *Service) updateContract(ctx context.Context, id int, c Contract) (Contract, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Contract{}, fault.Functional(CodeUpdateNotFound, "Unable to update contract with id = %d cause could not find it", id)
		}
		return Contract{}, pkgerrors.Wrapf(err, "failed to load contract %d", id)
	}

	c.ID = id
	updated, err := s.repo.Save(ctx, c)
	if err != nil {
		return Contract{}, pkgerrors.Wrapf(err, "failed to update contract %d", id)
	}
	return updated, nil
}

func (s *Service) deleteContract(ctx context.Context, id int) error {
	err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return fault.Functional(CodeDeleteNotFound, "Unable to delete contract with id = %d cause could not find it", id).Wrap(err)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to delete contract %d", id)
	}
	return nil
}

func (s *Service) debug(ctx context.Context, msg string, args ...any) {
	if err := emit.Debug(ctx, s.sink, msg, args...); err != nil {
		s.logger.Warn("debug record dropped", zap.Error(err))
	}
}

func (s *Service) business(ctx context.Context, items map[string]string, msg string, args ...any) {
	if err := emit.BusinessContext(ctx, s.sink, items, msg, args...); err != nil {
		s.logger.Warn("business record dropped", zap.Error(err))
	}
}
