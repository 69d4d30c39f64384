package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

const statusSuccess = "success"

// Response is the envelope of every successful request.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Page wraps list data with its pagination metadata.
type Page struct {
	Items      interface{}   `json:"items"`
	Pagination util.PageMeta `json:"pagination"`
}

func JSON(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  statusSuccess,
		Message: message,
		Data:    data,
	})
}

func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data)
}

func Paginated(c *gin.Context, message string, items interface{}, p util.Pagination, total int64) {
	OK(c, message, Page{Items: items, Pagination: p.Meta(total)})
}
