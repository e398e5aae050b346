package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/api/middleware"
	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/pkg/apperr"
	"aptcare/backend/pkg/jwt"
	"aptcare/backend/pkg/response"
)

// Context keys set by middleware.JWTAuth
const (
	CtxUserID = middleware.ContextUserID
	CtxRole   = middleware.ContextRole
	CtxClaims = middleware.ContextClaims
)

// Response codes shared by every module
const (
	codeValidation   = 10001
	codeUnauthorized = 10002
	codeForbidden    = 10003
	codeNotFound     = 10006
	codeConflict     = 10007
)

const maxUploadBytes = 10 << 20

// MustGetCaller builds the acting user from the JWT context.
// On failure a 401 is written and ok is false; the caller should return.
func MustGetCaller(c *gin.Context) (dto.Caller, bool) {
	userID := c.GetString(CtxUserID)
	role := c.GetString(CtxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, codeUnauthorized, "Chưa xác thực")
		return dto.Caller{}, false
	}
	return dto.Caller{UserID: userID, Role: model.Role(role)}, true
}

// MustGetClaims access token claims of the current request
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	claims, ok := v.(*jwt.Claims)
	if !exists || !ok {
		response.Unauthorized(c, codeUnauthorized, "Chưa xác thực")
		return nil, false
	}
	return claims, true
}

// bindFailed answers a request whose body or query did not pass binding
func bindFailed(c *gin.Context, err error) {
	if tooLarge(c, err) {
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "Dữ liệu không hợp lệ", err.Error())
}

// handleError maps a service error to its HTTP status by kind
func handleError(c *gin.Context, err error) {
	if tooLarge(c, err) {
		return
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		response.BadRequest(c, codeValidation, appErr.Message)
	case apperr.KindNotFound:
		response.NotFound(c, codeNotFound, appErr.Message)
	case apperr.KindForbidden:
		response.Forbidden(c, codeForbidden, appErr.Message)
	case apperr.KindConflict:
		response.Conflict(c, codeConflict, appErr.Message)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

func tooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Dữ liệu gửi lên vượt quá dung lượng cho phép")
	return true
}

// formFiles reads every file posted under field; a missing field yields nil
func formFiles(c *gin.Context, field string) ([]*dto.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	headers := form.File[field]
	files := make([]*dto.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// formFile first file posted under field, or nil
func formFile(c *gin.Context, field string) (*dto.FileUpload, error) {
	files, err := formFiles(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return files[0], nil
}

func readUpload(fh *multipart.FileHeader) (*dto.FileUpload, error) {
	if fh.Size > maxUploadBytes {
		return nil, apperr.Validationf("Tệp %s vượt quá dung lượng cho phép", fh.Filename)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &dto.FileUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// pageOK writes a paged list using the request's paging parameters
func pageOK(c *gin.Context, list interface{}, total int64, p dto.PaginationRequest) {
	response.OKPage(c, list, total, p.GetPage(), p.GetPageSize())
}

// reply writes a service result; plain strings are business messages
func reply(c *gin.Context, v interface{}) {
	if msg, ok := v.(string); ok {
		response.OKMessage(c, msg)
		return
	}
	response.OK(c, v)
}

// callerAction runs fn for the current caller on the :id path parameter
func callerAction[T any](c *gin.Context, fn func(context.Context, dto.Caller, string) (T, error)) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	reply(c, result)
}

// getByID serves fn on the :id path parameter
func getByID[T any](c *gin.Context, fn func(context.Context, string) (T, error)) {
	result, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// callerCreate binds a JSON body and runs fn for the current caller
func callerCreate[Req, T any](c *gin.Context, fn func(context.Context, dto.Caller, *Req) (T, error)) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := fn(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	reply(c, result)
}

// callerUpdate binds a JSON body and runs fn for the current caller on the :id path parameter
func callerUpdate[Req, T any](c *gin.Context, fn func(context.Context, dto.Caller, string, *Req) (T, error)) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := fn(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	reply(c, result)
}

type pagedQuery[Req any] interface {
	*Req
	GetPage() int
	GetPageSize() int
}

// listPaged binds the query string and writes one page of fn's result
func listPaged[Req any, P pagedQuery[Req], T any](c *gin.Context, fn func(context.Context, P) ([]T, int64, error)) {
	req := P(new(Req))
	if err := c.ShouldBindQuery(req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := fn(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
