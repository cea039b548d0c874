package http

import (
	"context"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/loggable/internal/contract"
	"github.com/GriffinCanCode/loggable/internal/emit"
	"github.com/GriffinCanCode/loggable/internal/fault"
	"github.com/GriffinCanCode/loggable/internal/infrastructure/logging"
	"github.com/GriffinCanCode/loggable/internal/loggable"
	"github.com/GriffinCanCode/loggable/internal/users"
)

// ContractService is what the controller needs from the contract domain.
type ContractService interface {
	FindAllContracts(ctx context.Context) ([]contract.Contract, error)
	FindContract(ctx context.Context, id int) (contract.Contract, error)
	FindContractsByUserID(ctx context.Context, userID int) ([]contract.Contract, error)
	AddContract(ctx context.Context, c contract.Contract, role string) (contract.Contract, error)
	UpdateContract(ctx context.Context, id int, c contract.Contract) (contract.Contract, error)
	DeleteContract(ctx context.Context, id int) error
}

// UsersService is what the controller needs from the users service.
type UsersService interface {
	Exists(ctx context.Context, userID int) (bool, error)
	Get(ctx context.Context, userID int) (contract.UserInfo, error)
	Role(ctx context.Context, userID int) (string, error)
}

// ControllerName is the name the controller is instrumented and logged under.
const ControllerName = "ContractController"

// Codes of the request errors detected before reaching the service.
const (
	CodeInvalidParameter = "invalid.parameter"
	CodeInvalidContract  = "invalid.contract"
)

// ContractController serves the contract REST API.
type ContractController struct {
	contracts ContractService
	users     UsersService
	sink      logging.Sink
	logger    *zap.Logger

	list       func(context.Context) ([]contract.Contract, error)
	get        func(context.Context, int) (contract.Info, error)
	listByUser func(context.Context, int) ([]contract.Contract, error)
	add        func(context.Context, contract.Contract) (contract.Contract, error)
	update     func(context.Context, int, contract.Contract) (contract.Contract, error)
	remove     func(context.Context, int) error
}

// NewContractController creates a controller whose operations run through
// interceptor under the contractService service name.
func NewContractController(contracts ContractService, usersService UsersService, interceptor *loggable.Interceptor, sinks logging.SinkFactory, logger *zap.Logger) *ContractController {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ContractController{
		contracts: contracts,
		users:     usersService,
		sink:      sinks.For(ControllerName),
		logger:    logger,
	}

	comp := loggable.NamedComponent(reflect.TypeOf(ContractController{}).PkgPath(), ControllerName,
		loggable.Declared{Service: "contractService", Debug: loggable.On})
	h.list = loggable.Func0(interceptor, comp.Method("GetContracts", loggable.Declared{}), h.contracts.FindAllContracts)
	h.get = loggable.Func1(interceptor, comp.Method("GetContractByID", loggable.Declared{}), h.contractInfo)
	h.listByUser = loggable.Func1(interceptor, comp.Method("GetContractsByUserID", loggable.Declared{}), h.contracts.FindContractsByUserID)
	h.add = loggable.Func1(interceptor, comp.Method("AddContract", loggable.Declared{}), h.addContract)
	h.update = loggable.Func2(interceptor, comp.Method("UpdateContract", loggable.Declared{}), h.contracts.UpdateContract)
	h.remove = loggable.Proc1(interceptor, comp.Method("DeleteContract", loggable.Declared{}), h.deleteContract)
	return h
}

// Register mounts the contract routes on r.
func (h *ContractController) Register(r gin.IRouter) {
	g := r.Group("/contracts")
	g.GET("", h.GetContracts)
	g.GET("/:id", h.GetContractByID)
	g.GET("/userId/:userId", h.GetContractsByUserID)
	g.POST("", h.AddContract)
	g.PUT("/:id", h.UpdateContract)
	g.DELETE("/:id", h.DeleteContract)
}

// GetContracts handles GET /contracts.
func (h *ContractController) GetContracts(c *gin.Context) {
	contracts, err := h.list(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// GetContractByID handles GET /contracts/:id. The contract is completed
// with its owner's details when the users service knows the owner.
func (h *ContractController) GetContractByID(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	info, err := h.get(forwardAuth(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetContractsByUserID handles GET /contracts/userId/:userId.
func (h *ContractController) GetContractsByUserID(c *gin.Context) {
	userID, ok := intParam(c, "userId")
	if !ok {
		return
	}
	contracts, err := h.listByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// AddContract handles POST /contracts. The owner's role is fetched from
// the users service.
func (h *ContractController) AddContract(c *gin.Context) {
	payload, ok := bindContract(c)
	if !ok {
		return
	}
	added, err := h.add(forwardAuth(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, added)
}

// UpdateContract handles PUT /contracts/:id.
func (h *ContractController) UpdateContract(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	payload, ok := bindContract(c)
	if !ok {
		return
	}
	updated, err := h.update(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteContract handles DELETE /contracts/:id.
func (h *ContractController) DeleteContract(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ContractController) contractInfo(ctx context.Context, id int) (contract.Info, error) {
	found, err := h.contracts.FindContract(ctx, id)
	if err != nil {
		return contract.Info{}, err
	}
	info := contract.NewInfo(found)

	exists, err := h.users.Exists(ctx, found.UserID)
	if err != nil {
		return contract.Info{}, err
	}
	if exists {
		user, err := h.users.Get(ctx, found.UserID)
		if err != nil {
			return contract.Info{}, err
		}
		info.SetUser(user)
	}
	return info, nil
}

func (h *ContractController) addContract(ctx context.Context, payload contract.Contract) (contract.Contract, error) {
	role, err := h.users.Role(ctx, payload.UserID)
	if err != nil {
		return contract.Contract{}, err
	}
	added, err := h.contracts.AddContract(ctx, payload, role)
	if err != nil {
		return contract.Contract{}, err
	}
	h.business(ctx, "Contract with id= %d has been created", added.ID)
	return added, nil
}

func (h *ContractController) deleteContract(ctx context.Context, id int) error {
	if err := h.contracts.DeleteContract(ctx, id); err != nil {
		return err
	}
	h.business(ctx, "Contract with id= %d has been deleted", id)
	return nil
}

func (h *ContractController) business(ctx context.Context, msg string, args ...any) {
	if err := emit.Business(ctx, h.sink, msg, args...); err != nil {
		h.logger.Warn("business record dropped", zap.Error(err))
	}
}

// forwardAuth returns the request context carrying the inbound
// Authorization header for the users service.
func forwardAuth(c *gin.Context) context.Context {
	return users.WithAuthorization(c.Request.Context(), c.GetHeader("Authorization"))
}

func intParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, fault.Functional(CodeInvalidParameter, "Invalid %s parameter: %q", name, raw))
		return 0, false
	}
	return v, true
}

func bindContract(c *gin.Context) (contract.Contract, bool) {
	var payload contract.Contract
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, fault.Functional(CodeInvalidContract, "Invalid contract: %s", err.Error()).Wrap(err))
		return contract.Contract{}, false
	}
	return payload, true
}
