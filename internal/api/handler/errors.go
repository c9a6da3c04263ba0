package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/platform/ai"
)

// UseJSONFieldNames makes binding errors report the json name of a field.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(shared.ValidationErrors, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, shared.ValidationError{Field: fe.Field(), Message: describeTag(fe)})
		}
		RespondValidation(c, details)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		RespondValidation(c, shared.ValidationErrors{{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}})
		return
	}

	logger.Warn("Invalid request body", "error", err)
	RespondBadRequest(c, "Invalid request body: "+err.Error())
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	case "email":
		return "must be an email address"
	case "uuid":
		return "must be a UUID"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

// respondError maps a service error to its HTTP response. Unknown errors
// are logged in full and answered with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	var (
		verrs        shared.ValidationErrors
		verr         shared.ValidationError
		productNF    product.ErrProductNotFound
		itemNF       buyinglist.ErrItemNotFound
		supplierNF   supplier.ErrSupplierNotFound
		requestNF    sourcing.ErrRequestNotFound
		jobNF        job.ErrJobNotFound
		sold         product.ErrAlreadySold
		received     buyinglist.ErrAlreadyReceived
		notRecv      buyinglist.ErrNotReceivable
		transition   sourcing.ErrInvalidTransition
		notRetryable job.ErrNotRetryable
		maxRetries   job.ErrMaxRetriesExceeded
		notCancel    job.ErrNotCancellable
		inProgress   importer.ErrImportInProgress
		cancelled    importer.ErrJobCancelled
		notConfig    ai.ErrProviderNotConfigured
		upstream     ai.ErrUpstream
	)

	switch {
	case errors.As(err, &verrs):
		RespondValidation(c, verrs)
	case errors.As(err, &verr):
		RespondValidation(c, shared.ValidationErrors{verr})

	case errors.As(err, &productNF):
		RespondNotFound(c, "Product not found")
	case errors.As(err, &itemNF):
		RespondNotFound(c, "Buying list item not found")
	case errors.As(err, &supplierNF):
		RespondNotFound(c, "Supplier not found")
	case errors.As(err, &requestNF):
		RespondNotFound(c, "Sourcing request not found")
	case errors.As(err, &jobNF):
		RespondNotFound(c, "Job not found")

	case errors.As(err, &sold):
		RespondBadRequest(c, "Product already sold")
	case errors.As(err, &received):
		RespondBadRequest(c, "Buying list item already received")
	case errors.As(err, &notRecv):
		RespondBadRequest(c, notRecv.Error())
	case errors.Is(err, importer.ErrUnparsableFile):
		RespondBadRequest(c, err.Error())

	case errors.As(err, &transition):
		RespondConflict(c, transition.Error(), gin.H{
			"from":    transition.From,
			"to":      transition.To,
			"allowed": sourcing.Successors(transition.From),
		})
	case errors.As(err, &notRetryable):
		RespondConflict(c, notRetryable.Error(), gin.H{"status": notRetryable.Status})
	case errors.As(err, &maxRetries):
		RespondConflict(c, maxRetries.Error(), gin.H{"retryCount": maxRetries.Retries, "maxRetries": maxRetries.Max})
	case errors.As(err, &notCancel):
		RespondConflict(c, notCancel.Error(), gin.H{"status": notCancel.Status})
	case errors.As(err, &inProgress):
		RespondConflict(c, inProgress.Error(), nil)
	case errors.As(err, &cancelled):
		RespondConflict(c, cancelled.Error(), nil)
	case errors.Is(err, service.ErrRetryUnavailable):
		RespondConflict(c, err.Error(), nil)
	case errors.Is(err, service.ErrQueueUnavailable):
		RespondUpstream(c, http.StatusServiceUnavailable, err.Error())

	case errors.Is(err, ai.ErrNoProvider):
		RespondUpstream(c, http.StatusServiceUnavailable, ai.ErrNoProvider.Error())
	case errors.As(err, &notConfig):
		RespondUpstream(c, http.StatusServiceUnavailable, notConfig.Error())
	case errors.As(err, &upstream):
		logger.Warn(msg, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondUpstream(c, http.StatusBadGateway, upstream.Error())

	default:
		logger.Error(msg, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}
