package posserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/DewinU/backend-DSI/internal/domains/catalog/application"
	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	salesapp "github.com/DewinU/backend-DSI/internal/domains/sales/application"
	salesdomain "github.com/DewinU/backend-DSI/internal/domains/sales/domain"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"
	apierrors "github.com/DewinU/backend-DSI/internal/shared/errors"
)

// responder maps domain and application errors onto RFC 7807 problems.
var responder = apierrors.NewChainedResponder("",
	mapInsufficientStock,
	mapSaleErrors,
	mapCatalogErrors,
)

func mapInsufficientStock(err error) (apierrors.ProblemDetail, bool) {
	var shortfall *salesdomain.InsufficientStockError
	if errors.As(err, &shortfall) {
		return apierrors.NewInsufficientStockProblem(shortfall.ProductName, shortfall.Available, shortfall.Requested), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapSaleErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, salesports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "sale"), true
	case errors.Is(err, salesdomain.ErrAlreadyCancelled):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, salesapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, salesports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapCatalogErrors(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "product"), true
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondServiceError renders any service error through the mapper chain.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondBadRequest reports malformed payloads detected at the boundary.
func respondBadRequest(c *gin.Context, err error) {
	responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
