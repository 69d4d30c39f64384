package controller

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/internal/middleware"
	"github.com/tabletime/tabletime-backend/internal/storage"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

// maxMultipartMemory bounds the in-memory part of a multipart request before spilling to disk.
const maxMultipartMemory = 32 << 20

// parseID reads a positive numeric path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, fmt.Sprintf("Invalid %s", param), c.FullPath())
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated caller. The auth middleware guarantees it on
// protected routes; a missing principal still answers 401 rather than panicking.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "", c.FullPath())
		return 0, false
	}
	return userID, true
}

func pagination(c *gin.Context) util.Pagination {
	return util.ParsePagination(c.Query("page"), c.Query("limit"), util.DefaultLimit)
}

// respondError logs a failed service call and renders its envelope.
func respondError(c *gin.Context, err error, location string) {
	log := middleware.GetLoggerFromContext(c)
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal {
		log.Warn("Request rejected", map[string]interface{}{
			"location": location,
			"kind":     appErr.Kind.String(),
			"code":     appErr.Code,
		})
	} else {
		log.Error("Request failed", err, map[string]interface{}{
			"location": location,
		})
	}
	apperrors.RespondWithAppError(c, err, location)
}

// bindOrReject binds the request body (JSON or form, by content type) and answers 400 on failure.
func bindOrReject(c *gin.Context, req interface{}, location string) bool {
	if err := c.ShouldBind(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"location": location,
			"error":    err.Error(),
		})
		apperrors.RespondWithValidationError(c, err, location)
		return false
	}
	return true
}

func readFileHeader(fh *multipart.FileHeader) (storage.File, error) {
	f, err := fh.Open()
	if err != nil {
		return storage.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		return storage.File{}, err
	}
	return storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     bytes.NewReader(data),
	}, nil
}

// formFile returns the named upload, or nil when the request carries none.
func formFile(c *gin.Context, field string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	file, err := readFileHeader(fh)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// formFiles returns every upload sent under field, in request order.
func formFiles(c *gin.Context, field string) ([]storage.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if stderrors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	files := make([]storage.File, 0, len(form.File[field]))
	for _, fh := range form.File[field] {
		file, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func rejectUpload(c *gin.Context, err error, location string) {
	middleware.GetLoggerFromContext(c).Warn("Unreadable upload", map[string]interface{}{
		"location": location,
		"error":    err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidFile, "Uploaded file could not be read", location)
}

// splitList accepts repeated values and comma-separated values alike.
func splitList(values []string) []string {
	return lo.Compact(lo.FlatMap(values, func(v string, _ int) []string {
		return lo.Map(strings.Split(v, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
	}))
}
