package response

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

type MessageBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	api.JSON(w, status, v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// Error writes err in the api.FailedResponse shape with the status of its
// kind. details carries the kind so callers can tell two 409s apart.
// Internal errors never leak their cause to the client.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	code := apperr.Code(kind)
	msg := apperr.Message(err)
	if kind == apperr.KindInternal {
		msg = er.ErrStrMap[er.InternalErrorCode]
	}
	api.ErrorJSON(w, int(code), errors.New(string(kind)), msg)
}
