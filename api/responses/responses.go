package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, message string, object any) {
	WriteSuccessStatus(w, http.StatusOK, message, object)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, message string, object any) {
	writeJSON(w, status, types.Envelope{
		Success: true,
		Message: message,
		Object:  object,
	})
}

// WritePaginated renders a list page with its page metadata.
func WritePaginated(w http.ResponseWriter, message string, object any, page pagination.Page) {
	writeJSON(w, http.StatusOK, types.PaginatedEnvelope{
		Success:    true,
		Message:    message,
		Object:     object,
		PageNumber: page.Number,
		PageSize:   page.Size,
		TotalSize:  page.TotalSize,
		TotalPages: page.TotalPages(),
	})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	errs := []string{msg}
	if meta.DetailsAllowed {
		if fieldErrs, ok := typed.Details().([]string); ok && len(fieldErrs) > 0 {
			errs = fieldErrs
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		fields := map[string]any{
			"error":       dump.TopMessage,
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
			"http_status": meta.HTTPStatus,
		}
		if store := dump.Store; store != nil {
			fields["db_fault"] = store.Class
			fields["db_sql_state"] = store.SQLState
			fields["db_constraint"] = store.Constraint
			fields["db_table"] = store.Table
			fields["db_column"] = store.Column
			fields["db_detail"] = store.Detail
		}
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.Envelope{
		Success: false,
		Message: msg,
		Errors:  errs,
	})
}

// WriteJSON writes a raw payload; used by endpoints outside the envelope such as the health check.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
