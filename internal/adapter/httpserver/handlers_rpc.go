package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
	"github.com/nitinmogalapalli/stackify/internal/rpc"
)

// handleProcedureCall serves POST /trpc/:path. The request body is the
// procedure's raw input; the response is the result envelope with the HTTP
// status derived from the outcome.
func (s *Server) handleProcedureCall(c echo.Context) error {
	identity, err := s.resolveIdentity(c)
	if err != nil {
		return err
	}

	rawInput, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}

	rc := rpc.NewContext(identity, s.svc, c.Request())
	result := s.dispatcher.Dispatch(c.Request().Context(), c.Param("path"), rawInput, rc)
	return c.JSON(result.HTTPStatus(), result)
}

// handleProcedureQuery serves GET /trpc/:path for side-effect-free
// procedures. The path segment may name several comma-separated queries;
// inputs ride in the "input" query parameter as a JSON object keyed by call
// index ({"0": ..., "1": ...}). A single call answers with one envelope at
// its mapped status; a batch answers 200 with one envelope per call in
// order, failures included.
func (s *Server) handleProcedureQuery(c echo.Context) error {
	identity, err := s.resolveIdentity(c)
	if err != nil {
		return err
	}

	inputs, verr := parseBatchInputs(c.QueryParam("input"))
	if verr != nil {
		return verr
	}

	rc := rpc.NewContext(identity, s.svc, c.Request())
	paths := strings.Split(c.Param("path"), ",")

	results := make([]rpc.Result, 0, len(paths))
	for i, path := range paths {
		results = append(results, s.dispatchQuery(c, path, inputs[strconv.Itoa(i)], rc))
	}

	if len(results) == 1 {
		return c.JSON(results[0].HTTPStatus(), results[0])
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) dispatchQuery(c echo.Context, path string, rawInput json.RawMessage, rc *rpc.Context) rpc.Result {
	// Mutations over GET are rejected here; unknown paths fall through so
	// the dispatcher reports them as not_found.
	if s.dispatcher.Registered(path) && !s.dispatcher.IsQuery(path) {
		return rpc.Result{
			Status:  rpc.StatusError,
			Kind:    apperrors.KindValidation,
			Message: "procedure " + strconv.Quote(path) + " is not callable via GET",
		}
	}
	return s.dispatcher.Dispatch(c.Request().Context(), path, rawInput, rc)
}

func parseBatchInputs(raw string) (map[string]json.RawMessage, *apperrors.Error) {
	if raw == "" {
		return nil, nil
	}
	inputs := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, apperrors.ValidationError("malformed input parameter")
	}
	return inputs, nil
}
